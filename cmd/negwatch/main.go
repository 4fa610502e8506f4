package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/negwatch/negwatch/internal/api"
	"github.com/negwatch/negwatch/internal/config"
	"github.com/negwatch/negwatch/internal/coord"
	"github.com/negwatch/negwatch/internal/filter"
	"github.com/negwatch/negwatch/internal/grid"
	"github.com/negwatch/negwatch/internal/logging"
	"github.com/negwatch/negwatch/internal/model"
	"github.com/negwatch/negwatch/internal/store"
	"github.com/negwatch/negwatch/internal/ui"
	"github.com/negwatch/negwatch/internal/work"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := logging.Init(); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Failed to load config", "error", err)
	}

	dataDir := config.DataDir()
	exportDir := filepath.Join(dataDir, "exports")
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		logging.Fatal("Failed to create export directory", "error", err)
	}

	st, err := store.Open(filepath.Join(dataDir, "negwatch.db"))
	if err != nil {
		logging.Fatal("Failed to open database", "error", err)
	}
	defer st.Close()

	client := api.NewClient(cfg.Server.URL, cfg.Timeout(), cfg.Server.RequestsPerSecond)

	pool := work.NewPool(4)
	pool.Start(ctx)
	defer pool.Stop()

	coordinator := coord.NewCoordinator(st, client)

	// The program is created after the AppConfig closures that reference it;
	// they only run once the program is.
	var program *tea.Program

	appCfg := ui.AppConfig{
		Cfg:     *cfg,
		DataDir: dataDir,
		Pool:    pool,

		LoadModes: func() tea.Cmd {
			return func() tea.Msg {
				return ui.ModesLoadedMsg{Modes: st.DisplayModes()}
			}
		},
		SaveModes: func(modes grid.ModeSet) tea.Cmd {
			return func() tea.Msg {
				if err := st.SaveDisplayModes(modes); err != nil {
					logging.Warn("failed to persist display modes", "error", err)
				}
				return nil
			}
		},

		LoadScenarios: func() tea.Cmd {
			return func() tea.Msg {
				scenarios, err := client.ListScenarios(ctx)
				if err == nil {
					// The default preset narrows the wizard's scenario list.
					if presets, cacheErr := st.CachedPresets(); cacheErr == nil {
						if def := filter.DefaultPreset(presets); def != nil {
							scenarios = filter.ByCriteria(scenarios, def.Criteria)
						}
					}
				}
				return ui.ScenariosMsg{Scenarios: scenarios, Err: err}
			}
		},
		LoadNegotiators: func() tea.Cmd {
			return func() tea.Msg {
				negotiators, err := client.ListNegotiators(ctx)
				return ui.NegotiatorsMsg{Negotiators: negotiators, Err: err}
			}
		},

		StartTournament: func(tc model.TournamentConfig) tea.Cmd {
			return func() tea.Msg {
				pool.SubmitFunc(work.KindTournament, "Starting tournament", func() (string, error) {
					id, err := client.StartTournament(ctx, tc)
					if err != nil {
						program.Send(ui.TournamentStartedMsg{Err: err})
						return "", err
					}
					if err := coordinator.FollowTournament(ctx, program, id); err != nil {
						program.Send(ui.TournamentStartedMsg{Err: err})
						return "", err
					}
					program.Send(ui.TournamentStartedMsg{TournamentID: id})
					return "following " + id, nil
				})
				return nil
			}
		},

		WriteExport: func(filename, contents string) tea.Cmd {
			return func() tea.Msg {
				pool.SubmitFunc(work.KindExport, "Exporting "+filename, func() (string, error) {
					path := filepath.Join(exportDir, filename)
					if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
						program.Send(ui.ExportedMsg{Err: err})
						return "", err
					}
					program.Send(ui.ExportedMsg{Path: path})
					return path, nil
				})
				return nil
			}
		},

		BuildCache: func() tea.Cmd {
			return func() tea.Msg {
				pool.SubmitWithProgress(work.KindCacheBuild, "Building scenario cache",
					func(progress func(pct float64, msg string)) (string, error) {
						updates, err := client.BuildCacheStream(ctx)
						if err != nil {
							program.Send(ui.CacheActionMsg{Action: "build", Err: err})
							return "", err
						}
						var last model.BuildProgress
						for update := range updates {
							last = update
							if update.Total > 0 {
								progress(float64(update.Done)/float64(update.Total),
									fmt.Sprintf("%d of %d", update.Done, update.Total))
							}
						}
						if last.Type == "error" {
							err := fmt.Errorf("cache build failed: %s", last.Message)
							program.Send(ui.CacheActionMsg{Action: "build", Err: err})
							return "", err
						}
						program.Send(ui.CacheActionMsg{Action: "build"})
						return fmt.Sprintf("%d scenarios cached", last.Done), nil
					})
				return nil
			}
		},
		ClearCache: func() tea.Cmd {
			return func() tea.Msg {
				pool.SubmitFunc(work.KindCacheBuild, "Clearing scenario cache", func() (string, error) {
					err := client.ClearCache(ctx)
					program.Send(ui.CacheActionMsg{Action: "clear", Err: err})
					if err != nil {
						return "", err
					}
					return "cache cleared", nil
				})
				return nil
			}
		},

		LoadHistory: func() tea.Cmd {
			return func() tea.Msg {
				id, init, err := st.LastTournament()
				if err != nil {
					return ui.HistoryMsg{Err: err}
				}
				negotiations, err := st.GetNegotiations(id, 10000)
				if err != nil {
					return ui.HistoryMsg{Err: err}
				}
				return ui.HistoryMsg{TournamentID: id, Init: init, Negotiations: negotiations}
			}
		},

		RecalcStats: func(scenarioID string) tea.Cmd {
			return func() tea.Msg {
				pool.SubmitFunc(work.KindStats, "Recalculating stats for "+scenarioID, func() (string, error) {
					if err := client.CalculateScenarioStats(ctx, scenarioID); err != nil {
						program.Send(ui.StatsMsg{ScenarioID: scenarioID, Err: err})
						return "", err
					}
					stats, err := client.ScenarioStats(ctx, scenarioID)
					program.Send(ui.StatsMsg{ScenarioID: scenarioID, Stats: stats, Err: err})
					if err != nil {
						return "", err
					}
					return fmt.Sprintf("%d outcomes", stats.OutcomeCount), nil
				})
				return nil
			}
		},
		BackupSettings: func() tea.Cmd {
			return func() tea.Msg {
				pool.SubmitFunc(work.KindExport, "Backing up server settings", func() (string, error) {
					path, err := client.ExportSettings(ctx, exportDir)
					program.Send(ui.SettingsBackupMsg{Path: path, Err: err})
					if err != nil {
						return "", err
					}
					return path, nil
				})
				return nil
			}
		},
		ResetSettings: func() tea.Cmd {
			return func() tea.Msg {
				pool.SubmitFunc(work.KindOther, "Resetting server settings", func() (string, error) {
					err := client.ResetSettings(ctx)
					program.Send(ui.SettingsResetMsg{Err: err})
					if err != nil {
						return "", err
					}
					return "settings reset", nil
				})
				return nil
			}
		},

		ExportPresets: func() tea.Cmd {
			return func() tea.Msg {
				pool.SubmitFunc(work.KindExport, "Exporting filter presets", func() (string, error) {
					presets, err := client.ExportFilters(ctx)
					if err != nil {
						program.Send(ui.ExportedMsg{Err: err})
						return "", err
					}
					data, err := json.MarshalIndent(presets, "", "  ")
					if err != nil {
						program.Send(ui.ExportedMsg{Err: err})
						return "", err
					}
					stamp := time.Now().Format("2006-01-02T15-04-05")
					path := filepath.Join(exportDir, "presets-"+stamp+".json")
					if err := os.WriteFile(path, data, 0o644); err != nil {
						program.Send(ui.ExportedMsg{Err: err})
						return "", err
					}
					program.Send(ui.ExportedMsg{Path: path})
					return path, nil
				})
				return nil
			}
		},

		DeletePreset:     presetAction(ctx, pool, &program, "delete", client.DeleteFilter, client, st),
		SetDefaultPreset: presetAction(ctx, pool, &program, "set default", client.SetDefaultFilter, client, st),
		DuplicatePreset: presetAction(ctx, pool, &program, "duplicate", func(ctx context.Context, id string) error {
			_, err := client.DuplicateFilter(ctx, id)
			return err
		}, client, st),
	}

	app := ui.NewApp(appCfg)
	program = tea.NewProgram(app, tea.WithAltScreen())

	// Pump pool events into the UI so job failures surface immediately
	// instead of waiting for the next jobs-view poll.
	jobEvents := pool.Subscribe()
	go func() {
		for event := range jobEvents {
			program.Send(ui.JobEventMsg{Job: event.Job, Change: event.Change})
		}
	}()

	coordinator.StartRefresh(ctx, program, time.Duration(cfg.Cache.PollSeconds)*time.Second)

	if _, err := program.Run(); err != nil {
		logging.Error("program exited with error", "error", err)
	}

	cancel()
	pool.Unsubscribe(jobEvents)
	coordinator.Wait()
}

// presetAction builds a command factory for a preset mutation: run it through
// the pool, report the outcome, then push a fresh preset list to the UI.
func presetAction(ctx context.Context, pool *work.Pool, program **tea.Program, action string,
	mutate func(ctx context.Context, id string) error, client *api.Client, st *store.Store) func(id string) tea.Cmd {

	return func(id string) tea.Cmd {
		return func() tea.Msg {
			pool.SubmitFunc(work.KindFilters, "Preset "+action, func() (string, error) {
				p := *program
				if err := mutate(ctx, id); err != nil {
					p.Send(ui.PresetActionMsg{Action: action, ID: id, Err: err})
					return "", err
				}
				p.Send(ui.PresetActionMsg{Action: action, ID: id})

				presets, err := client.ListFilters(ctx)
				if err == nil {
					if cacheErr := st.CachePresets(presets); cacheErr != nil {
						logging.Warn("failed to cache presets", "error", cacheErr)
					}
					p.Send(ui.PresetsMsg{Presets: presets})
				}
				return action + " " + id, nil
			})
			return nil
		}
	}
}
