package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/repository"
	"github.com/google/uuid"
)

// 审计结果
const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeDenied  = "denied"
	AuditOutcomeError   = "error"
)

// AuditFact 一条审计事实
// 每次对外操作(submit/act/override)产生一条,由审计服务代为持久化
type AuditFact struct {
	ActorID    string
	Action     string
	DocumentID string
	FlowID     string
	StepOrder  int
	Outcome    string
	Details    interface{}
}

// AuditLogService 审计日志服务
// 工作流引擎只产出审计事实,落库由这里完成
type AuditLogService interface {
	Record(ctx context.Context, fact *AuditFact) error
	List(ctx context.Context, filter *repository.AuditLogFilter) ([]*model.AuditLogModel, int64, error)
}

// auditLogService 审计日志服务实现
type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{
		auditRepo: auditRepo,
	}
}

// Record 记录一条审计事实
func (s *auditLogService) Record(ctx context.Context, fact *AuditFact) error {
	var detailsJSON []byte
	if fact.Details != nil {
		data, err := json.Marshal(fact.Details)
		if err != nil {
			return err
		}
		detailsJSON = data
	}

	log := &model.AuditLogModel{
		ID:         uuid.New().String(),
		ActorID:    fact.ActorID,
		Action:     fact.Action,
		DocumentID: fact.DocumentID,
		FlowID:     fact.FlowID,
		StepOrder:  fact.StepOrder,
		Outcome:    fact.Outcome,
		RequestID:  GetRequestID(ctx),
		IP:         GetClientIP(ctx),
		Details:    detailsJSON,
		CreatedAt:  time.Now(),
	}

	return s.auditRepo.Save(ctx, log)
}

// List 查询审计日志
func (s *auditLogService) List(ctx context.Context, filter *repository.AuditLogFilter) ([]*model.AuditLogModel, int64, error) {
	return s.auditRepo.FindByFilter(ctx, filter)
}

// GetRequestID 从 context 获取请求 ID
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value("request_id"); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetClientIP 从 context 获取客户端 IP
func GetClientIP(ctx context.Context) string {
	if v := ctx.Value("ip"); v != nil {
		if ip, ok := v.(string); ok {
			return ip
		}
	}
	return ""
}
