package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/domain/jobModel"
	"github.com/akolanti/DocsAPI/internal/job"
	"github.com/akolanti/DocsAPI/internal/metrics"
	"github.com/akolanti/DocsAPI/internal/rag"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service   *job.Service
	rag       rag.Service
	convStore docModel.ConversationStore
}

func InitJobHandler(jobService *job.Service, ragService rag.Service, convStore docModel.ConversationStore) {
	once.Do(func() {
		handlerInstance = &JobHandler{
			service:   jobService,
			rag:       ragService,
			convStore: convStore,
		}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateIngestJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new ingest job")
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.CurrentStep = jobModel.IngestInit
	_job.JobPayload.FileName = newJob.documentName
	_job.JobPayload.SourcePath = newJob.documentSource
	_job.JobPayload.RawText = newJob.rawText
	_job.JobPayload.Collection = newJob.collection

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//ingestion involves batch embedding calls which can take a while,
	//so every ingest job signals for a worker; the pool caps the count
	//and idle workers retire on their own
	atomic.AddInt64(&h.service.RequestCount, 1)
	metrics.StartDispatcherSignalCount()
	h.service.DispatcherChannel <- true
}
