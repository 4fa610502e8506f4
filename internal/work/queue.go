package work

// jobQueue is a max-heap of pending jobs: higher priority first, FIFO within
// equal priority.
type jobQueue []*Job

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	if q[i].Priority != q[j].Priority {
		return q[i].Priority > q[j].Priority
	}
	return q[i].CreatedAt.Before(q[j].CreatedAt)
}

func (q jobQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].heapIndex = i
	q[j].heapIndex = j
}

func (q *jobQueue) Push(x any) {
	job := x.(*Job)
	job.heapIndex = len(*q)
	*q = append(*q, job)
}

func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	job.heapIndex = -1
	*q = old[:n-1]
	return job
}

// ring keeps the most recent finished jobs, newest first.
type ring struct {
	jobs []*Job
	size int
}

func newRing(size int) *ring {
	return &ring{size: size}
}

func (r *ring) push(job *Job) {
	r.jobs = append([]*Job{job}, r.jobs...)
	if len(r.jobs) > r.size {
		r.jobs = r.jobs[:r.size]
	}
}

func (r *ring) all() []*Job {
	out := make([]*Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}

func (r *ring) clear() {
	r.jobs = nil
}
