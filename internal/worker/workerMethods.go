package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocsAPI/internal/config"
	jobmodel "github.com/akolanti/DocsAPI/internal/domain/jobModel"
	"github.com/akolanti/DocsAPI/internal/metrics"
)

// Ingestion covers extraction, batched embedding calls and a summary call.
const ingestJobTimeout = 5 * time.Minute

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, ingestJobTimeout)
	defer cancel()
	logger.With("trace Id ", job.TraceId)
	logger.Debug("Processing job:", "job Id:", job.Id)

	job.Status = jobmodel.JobStatusRunning
	saveJobState(ctx, job)

	job = _ragService.IngestDocument(ctx, job)

	job.EndTime = time.Now()
	saveJobState(ctx, job)
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

func saveJobState(ctx context.Context, job jobmodel.Job) {
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update status in Redis", "err", err)
	}
}
