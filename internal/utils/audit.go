package utils

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sgeneral-iua/portal-sg/internal/config"
	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/observability"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     int64              `bson:"user_id" json:"user_id"`
	Username   string             `bson:"username,omitempty" json:"username,omitempty"`
	SessionID  string             `bson:"session_id,omitempty" json:"session_id,omitempty"`
	Action     string             `bson:"action" json:"action"`
	Resource   string             `bson:"resource" json:"resource"`
	ResourceID string             `bson:"resource_id" json:"resource_id"`
	OldValue   interface{}        `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue   interface{}        `bson:"new_value,omitempty" json:"new_value,omitempty"`
	IPAddress  string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestID  string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
	Metadata   map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Audit constants
const (
	AuditActionCreate   = "CREATE"
	AuditActionUpdate   = "UPDATE"
	AuditActionDelete   = "DELETE"
	AuditActionUpload   = "UPLOAD"
	AuditActionDownload = "DOWNLOAD"
	AuditActionReview   = "REVIEW"
	AuditActionLogin    = "LOGIN"
	AuditActionLogout   = "LOGOUT"

	AuditResourceSession     = "session"
	AuditResourceForm        = "form"
	AuditResourceFormPDF     = "form_pdf"
	AuditResourceRequest     = "request"
	AuditResourceRequirement = "requirement"
)

// AuditContext contains context information for audit logging
type AuditContext struct {
	UserID    int64
	Username  string
	SessionID string
	IPAddress string
	UserAgent string
	RequestID string
}

// AuditWorker manages asynchronous audit logging
type AuditWorker struct {
	auditChan chan AuditLog
	workers   int
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

var (
	auditWorker *AuditWorker
	auditMu     sync.Mutex
)

const (
	auditBatchSize     = 100
	auditFlushInterval = 100 * time.Millisecond
)

// InitAuditWorker initializes the audit worker. Calling it again while a
// worker is running is a no-op.
func InitAuditWorker(workers int, bufferSize int) {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditWorker != nil {
		return
	}
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	auditWorker = &AuditWorker{
		auditChan: make(chan AuditLog, bufferSize),
		workers:   workers,
		ctx:       ctx,
		cancel:    cancel,
	}
	auditWorker.start()
}

// StopAuditWorker drains pending events and stops the global worker
func StopAuditWorker() {
	auditMu.Lock()
	aw := auditWorker
	auditWorker = nil
	auditMu.Unlock()

	aw.Stop()
}

// start starts the audit worker pool
func (aw *AuditWorker) start() {
	aw.wg.Add(aw.workers)

	for i := 0; i < aw.workers; i++ {
		go func() {
			defer aw.wg.Done()
			aw.processAuditLogs()
		}()
	}

	logging.Logger.Info("audit worker started with batched processing",
		zap.Int("workers", aw.workers),
		zap.Int("buffer_size", cap(aw.auditChan)))
}

// processAuditLogs processes audit logs in batches
func (aw *AuditWorker) processAuditLogs() {
	batchTicker := time.NewTicker(auditFlushInterval)
	defer batchTicker.Stop()

	batch := make([]AuditLog, 0, auditBatchSize)

	for {
		select {
		case auditLog, ok := <-aw.auditChan:
			if !ok {
				if len(batch) > 0 {
					aw.flushBatch(batch)
				}
				return
			}
			batch = append(batch, auditLog)

			if len(batch) >= auditBatchSize {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		case <-batchTicker.C:
			if len(batch) > 0 {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func auditCollection() *mongo.Collection {
	if config.MongoDB == nil || config.AppConfig == nil {
		return nil
	}
	return config.MongoDB.Collection(config.AppConfig.AuditLogCollection)
}

// flushBatch writes a batch of audit logs with a single unordered bulk insert
func (aw *AuditWorker) flushBatch(batch []AuditLog) {
	if len(batch) == 0 {
		return
	}

	logger := logging.Logger.With(
		zap.Int("batch_size", len(batch)),
		zap.String("operation", "audit_batch_insert"),
	)

	collection := auditCollection()
	if collection == nil {
		observability.AuditEvents.WithLabelValues("dropped").Add(float64(len(batch)))
		logger.Warn("audit log store not configured, dropping batch")
		return
	}

	operations := make([]mongo.WriteModel, 0, len(batch))
	for _, log := range batch {
		operations = append(operations, mongo.NewInsertOneModel().SetDocument(log))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false))
	if err != nil {
		observability.AuditEvents.WithLabelValues("failed").Add(float64(len(batch)))
		logger.Error("failed to insert audit log batch", zap.Error(err))
		return
	}

	observability.AuditEvents.WithLabelValues("stored").Add(float64(result.InsertedCount))
	logger.Debug("audit log batch inserted", zap.Int64("inserted", result.InsertedCount))
}

// Stop stops the audit worker after flushing what is queued
func (aw *AuditWorker) Stop() {
	if aw != nil {
		aw.cancel()
		close(aw.auditChan)
		aw.wg.Wait()
	}
}

// GetAuditWorker returns the global audit worker instance
func GetAuditWorker() *AuditWorker {
	auditMu.Lock()
	defer auditMu.Unlock()
	return auditWorker
}

func newAuditLog(auditCtx AuditContext, action, resource, resourceID string, oldValue, newValue interface{}, metadata map[string]string) AuditLog {
	return AuditLog{
		UserID:     auditCtx.UserID,
		Username:   auditCtx.Username,
		SessionID:  auditCtx.SessionID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   oldValue,
		NewValue:   newValue,
		IPAddress:  auditCtx.IPAddress,
		UserAgent:  auditCtx.UserAgent,
		RequestID:  auditCtx.RequestID,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}

// LogAuditEvent queues an audit event. When no worker runs, or its buffer is
// full, the event is written synchronously.
func LogAuditEvent(ctx context.Context, auditCtx AuditContext, action, resource, resourceID string, oldValue, newValue interface{}, metadata map[string]string) error {
	if config.AppConfig == nil || !config.AppConfig.AuditLogsEnabled {
		return nil
	}

	auditLog := newAuditLog(auditCtx, action, resource, resourceID, oldValue, newValue, metadata)

	worker := GetAuditWorker()
	if worker == nil {
		return logAuditEventSync(ctx, auditLog)
	}

	select {
	case worker.auditChan <- auditLog:
		observability.AuditEvents.WithLabelValues("queued").Inc()
		return nil
	default:
		logging.Logger.Warn("audit channel full, falling back to synchronous logging",
			zap.Int64("user_id", auditCtx.UserID),
			zap.String("action", action))
		return logAuditEventSync(ctx, auditLog)
	}
}

// logAuditEventSync writes one audit event directly
func logAuditEventSync(ctx context.Context, auditLog AuditLog) error {
	logger := logging.Logger.With(
		zap.Int64("user_id", auditLog.UserID),
		zap.String("action", auditLog.Action),
		zap.String("resource", auditLog.Resource),
	)

	collection := auditCollection()
	if collection == nil {
		observability.AuditEvents.WithLabelValues("dropped").Inc()
		logger.Warn("audit log store not configured, dropping event")
		return nil
	}

	dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := collection.InsertOne(dbCtx, auditLog); err != nil {
		observability.AuditEvents.WithLabelValues("failed").Inc()
		logger.Error("failed to insert audit log", zap.Error(err))
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	observability.AuditEvents.WithLabelValues("stored").Inc()
	return nil
}

// LogLogin records a successful sign-in
func LogLogin(ctx context.Context, auditCtx AuditContext) error {
	return LogAuditEvent(ctx, auditCtx, AuditActionLogin, AuditResourceSession, auditCtx.SessionID, nil, nil, nil)
}

// LogLogout records a sign-out
func LogLogout(ctx context.Context, auditCtx AuditContext) error {
	return LogAuditEvent(ctx, auditCtx, AuditActionLogout, AuditResourceSession, auditCtx.SessionID, nil, nil, nil)
}

// LogFormUpdate records a wizard save. Values are the sanitized payloads.
func LogFormUpdate(ctx context.Context, auditCtx AuditContext, step string, oldValue, newValue interface{}) error {
	metadata := map[string]string{
		"operation": "wizard_save",
		"step":      step,
	}
	return LogAuditEvent(ctx, auditCtx, AuditActionUpdate, AuditResourceForm, strconv.FormatInt(auditCtx.UserID, 10), oldValue, newValue, metadata)
}

// LogFormPDF records the generation of the form PDF
func LogFormPDF(ctx context.Context, auditCtx AuditContext) error {
	return LogAuditEvent(ctx, auditCtx, AuditActionCreate, AuditResourceFormPDF, strconv.FormatInt(auditCtx.UserID, 10), nil, nil, nil)
}

// LogRequestCreated records the creation of a request for a title
func LogRequestCreated(ctx context.Context, auditCtx AuditContext, requestID, titleID int64) error {
	metadata := map[string]string{"title_id": strconv.FormatInt(titleID, 10)}
	return LogAuditEvent(ctx, auditCtx, AuditActionCreate, AuditResourceRequest, strconv.FormatInt(requestID, 10), nil, nil, metadata)
}

// LogRequirementUpload records a document upload
func LogRequirementUpload(ctx context.Context, auditCtx AuditContext, requestID, instanceID int64, fileName string) error {
	metadata := map[string]string{
		"request_id": strconv.FormatInt(requestID, 10),
		"file_name":  fileName,
	}
	return LogAuditEvent(ctx, auditCtx, AuditActionUpload, AuditResourceRequirement, strconv.FormatInt(instanceID, 10), nil, nil, metadata)
}

// LogRequirementDownload records who fetched a requirement document
func LogRequirementDownload(ctx context.Context, auditCtx AuditContext, requestID, instanceID int64) error {
	metadata := map[string]string{"request_id": strconv.FormatInt(requestID, 10)}
	return LogAuditEvent(ctx, auditCtx, AuditActionDownload, AuditResourceRequirement, strconv.FormatInt(instanceID, 10), nil, nil, metadata)
}

// LogRequirementReview records a reviewer decision
func LogRequirementReview(ctx context.Context, auditCtx AuditContext, requestID, instanceID, oldStatus, newStatus int64) error {
	metadata := map[string]string{"request_id": strconv.FormatInt(requestID, 10)}
	return LogAuditEvent(ctx, auditCtx, AuditActionReview, AuditResourceRequirement, strconv.FormatInt(instanceID, 10), oldStatus, newStatus, metadata)
}

// GetAuditContextFromGin extracts audit context from Gin context
func GetAuditContextFromGin(c *gin.Context) AuditContext {
	auditCtx := AuditContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString("request_id"),
	}
	if auditCtx.RequestID == "" {
		auditCtx.RequestID = c.GetHeader("X-Request-ID")
	}

	if value, exists := c.Get(models.SessionContextKey); exists {
		if session, ok := value.(*models.Session); ok && session != nil {
			auditCtx.UserID = session.UserID
			auditCtx.Username = session.Username
			auditCtx.SessionID = session.ID
		}
	}
	return auditCtx
}
