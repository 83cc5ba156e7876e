package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocsAPI/internal/adapter"
	"github.com/akolanti/DocsAPI/internal/adapter/utils"
	"github.com/akolanti/DocsAPI/internal/api"
	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/rag"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

var logRH *logger_i.Logger

type newJobData struct {
	id             string
	traceId        string
	documentName   string
	documentSource string
	rawText        string
	collection     string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// AnalyzeHandler godoc
// @Summary      Submit a document for analysis
// @Description  Accepts raw text as JSON or a PDF/DOCX upload as multipart/form-data, queues an ingestion job, and returns a job ID to track status.
// @Tags         Documents
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request  body      api.AnalyzeRequest   false  "Raw text with optional file name and collection"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data"
// @Failure      500      {object}  api.JobResponse      "Storage or write error"
// @Router       /analyze [post]
func AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		analyzeUpload(w, r)
		return
	}
	analyzeRawText(w, r)
}

func analyzeRawText(w http.ResponseWriter, r *http.Request) {
	var requestData api.AnalyzeRequest
	defer closeBody(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Text) == "" {
		logRH.Warn("Bad Analyze Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "text is required")
		return
	}

	fileName := requestData.FileName
	if fileName == "" {
		fileName = "untitled.txt"
	}

	newJob := newJobData{
		id:           utils.GetNewUUID(),
		traceId:      r.Context().Value(config.TRACE_ID_KEY).(string),
		documentName: fileName,
		rawText:      requestData.Text,
		collection:   requestData.Collection,
	}
	CreateIngestJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

func analyzeUpload(w http.ResponseWriter, r *http.Request) {
	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	const maxUploadSize = 32 << 20 //32mb
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	docName := r.FormValue("document_name")

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	if docName == "" {
		docName = fileMetadata.Filename
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}

	newJob := newJobData{
		id:             utils.GetNewUUID(),
		traceId:        r.Context().Value(config.TRACE_ID_KEY).(string),
		documentName:   docName,
		documentSource: tempFilePath,
		collection:     r.FormValue("collection"),
	}
	CreateIngestJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// RagHandler godoc
// @Summary      Ask a question over ingested documents
// @Description  Runs retrieval, context assembly and answer synthesis synchronously and returns the cited answer with its sources.
// @Tags         RAG
// @Accept       json
// @Produce      json
// @Param        request  body      api.RagRequest   true  "Query with optional collection, chat ID and thoughts flag"
// @Success      200      {object}  api.RagResponse  "Synthesized answer"
// @Failure      400      {object}  api.JobResponse  "Missing query or unknown chat ID"
// @Failure      500      {object}  api.JobResponse  "Pipeline failure"
// @Router       /rag [post]
func RagHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.RagRequest
	defer closeBody(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Query) == "" {
		logRH.Warn("Bad Rag Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "query is required")
		return
	}

	chatId, ok := resolveChatId(r, requestData.ChatId)
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatId, "unknown chat id")
		return
	}

	result, err := handlerInstance.rag.Query(r.Context(), toQueryRequest(requestData, chatId))
	if err != nil {
		logRH.Error("Rag query failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, chatId, "Internal Server Error")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToRagResponse(requestData.Query, chatId, result))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific ingestion job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse  "The current status of the job"
// @Failure      404  {object}  api.JobResponse  "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// GetDocumentHandler godoc
// @Summary      Get document metadata
// @Description  Returns the stored metadata of an ingested document, including its summary and a content preview flag.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse  "Document metadata"
// @Failure      404  {object}  api.JobResponse       "Document not found"
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")

	doc := handlerInstance.rag.GetDocument(r.Context(), id)
	if doc == nil {
		WriteErrorResponse(w, http.StatusNotFound, id, "Document not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

// GetDocumentContentHandler godoc
// @Summary      Get full document content
// @Description  Returns the readable text of a document, reconstructed from chunked storage and extracted from binary formats where needed.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentContentResponse  "Document content"
// @Failure      404  {object}  api.JobResponse              "Document not found or unreadable"
// @Router       /documents/{id}/content [get]
func GetDocumentContentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")

	content, err := handlerInstance.rag.GetDocumentContent(r.Context(), id)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, id, "Document not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentContentResponse{Id: id, Content: content})
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes a document, its stored chunks and its indexed vectors.
// @Tags         Documents
// @Param        id   path  string  true  "Document ID"
// @Success      204  "Deleted"
// @Failure      404  {object}  api.JobResponse  "Document not found"
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")

	if !handlerInstance.rag.DeleteDocument(r.Context(), id) {
		WriteErrorResponse(w, http.StatusNotFound, id, "Document not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toQueryRequest(requestData api.RagRequest, chatId string) rag.QueryRequest {
	return rag.QueryRequest{
		Query:        requestData.Query,
		Collection:   requestData.CollectionId,
		ChatId:       chatId,
		WantThoughts: requestData.IncludeThoughts,
	}
}
