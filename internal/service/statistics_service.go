package service

import (
	"context"
	"fmt"

	"github.com/EngineerSamet/document-management-system-sub000/internal/metrics"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"gorm.io/gorm"
)

// StatisticsService 统计服务接口
type StatisticsService interface {
	GetFlowStatisticsByStatus(ctx context.Context) ([]*FlowStatisticsByStatus, error)
	GetFlowStatisticsByType(ctx context.Context) ([]*FlowStatisticsByType, error)
	GetFlowStatisticsByTime(ctx context.Context) ([]*FlowStatisticsByTime, error)
	GetApprovalStatistics(ctx context.Context) (*ApprovalStatistics, error)
}

// FlowStatisticsByStatus 按状态统计
type FlowStatisticsByStatus struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// FlowStatisticsByType 按审批流类型统计
type FlowStatisticsByType struct {
	FlowType     string  `json:"flow_type"`
	Count        int64   `json:"count"`
	AverageSteps float64 `json:"average_steps"`
}

// FlowStatisticsByTime 按时间统计
type FlowStatisticsByTime struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ApprovalStatistics 审批统计
type ApprovalStatistics struct {
	TotalActions  int64   `json:"total_actions"`
	ApprovedCount int64   `json:"approved_count"`
	RejectedCount int64   `json:"rejected_count"`
	SkippedCount  int64   `json:"skipped_count"`
	OverrideCount int64   `json:"override_count"`
	ApprovalRate  float64 `json:"approval_rate"`
}

// statisticsService 统计服务实现
type statisticsService struct {
	db *gorm.DB
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetFlowStatisticsByStatus 按状态统计审批流,同时刷新状态分布指标
func (s *statisticsService) GetFlowStatisticsByStatus(ctx context.Context) ([]*FlowStatisticsByStatus, error) {
	var results []struct {
		Status string
		Count  int64
	}

	err := s.db.WithContext(ctx).Model(&model.FlowModel{}).
		Select("status, COUNT(*) as count").
		Where("is_template = ?", false).
		Group("status").
		Scan(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get flow statistics by status: %w", err)
	}

	stats := make([]*FlowStatisticsByStatus, 0, len(results))
	for _, r := range results {
		metrics.UpdateFlowsByStatus(r.Status, float64(r.Count))
		stats = append(stats, &FlowStatisticsByStatus{
			Status: r.Status,
			Count:  r.Count,
		})
	}

	return stats, nil
}

// GetFlowStatisticsByType 按审批流类型统计,附每类的平均步骤数
func (s *statisticsService) GetFlowStatisticsByType(ctx context.Context) ([]*FlowStatisticsByType, error) {
	var results []struct {
		FlowType     string
		Count        int64
		AverageSteps float64
	}

	err := s.db.WithContext(ctx).Model(&model.FlowModel{}).
		Select("flows.flow_type, COUNT(DISTINCT flows.id) as count, COUNT(flow_steps.id)::float / COUNT(DISTINCT flows.id) as average_steps").
		Joins("JOIN flow_steps ON flow_steps.flow_id = flows.id").
		Where("flows.is_template = ?", false).
		Group("flows.flow_type").
		Scan(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get flow statistics by type: %w", err)
	}

	stats := make([]*FlowStatisticsByType, 0, len(results))
	for _, r := range results {
		stats = append(stats, &FlowStatisticsByType{
			FlowType:     r.FlowType,
			Count:        r.Count,
			AverageSteps: r.AverageSteps,
		})
	}

	return stats, nil
}

// GetFlowStatisticsByTime 按时间统计审批流
func (s *statisticsService) GetFlowStatisticsByTime(ctx context.Context) ([]*FlowStatisticsByTime, error) {
	var results []struct {
		Date  string
		Count int64
	}

	err := s.db.WithContext(ctx).Model(&model.FlowModel{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("is_template = ?", false).
		Group("DATE(created_at)").
		Order("date DESC").
		Scan(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get flow statistics by time: %w", err)
	}

	stats := make([]*FlowStatisticsByTime, 0, len(results))
	for _, r := range results {
		stats = append(stats, &FlowStatisticsByTime{
			Date:  r.Date,
			Count: r.Count,
		})
	}

	return stats, nil
}

// GetApprovalStatistics 获取审批动作统计
func (s *statisticsService) GetApprovalStatistics(ctx context.Context) (*ApprovalStatistics, error) {
	history := s.db.WithContext(ctx).Model(&model.FlowHistoryModel{})

	var totalCount int64
	if err := history.Session(&gorm.Session{}).Count(&totalCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count flow history: %w", err)
	}

	var approvedCount int64
	if err := history.Session(&gorm.Session{}).
		Where("action = ?", string(model.ActionApprove)).
		Count(&approvedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count approvals: %w", err)
	}

	var rejectedCount int64
	if err := history.Session(&gorm.Session{}).
		Where("action = ?", string(model.ActionReject)).
		Count(&rejectedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count rejections: %w", err)
	}

	var skippedCount int64
	if err := history.Session(&gorm.Session{}).
		Where("action = ?", string(model.ActionSkip)).
		Count(&skippedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count skips: %w", err)
	}

	var overrideCount int64
	if err := history.Session(&gorm.Session{}).
		Where("override = ?", true).
		Count(&overrideCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count overrides: %w", err)
	}

	approvalRate := 0.0
	if totalCount > 0 {
		approvalRate = float64(approvedCount) / float64(totalCount) * 100
	}

	return &ApprovalStatistics{
		TotalActions:  totalCount,
		ApprovedCount: approvedCount,
		RejectedCount: rejectedCount,
		SkippedCount:  skippedCount,
		OverrideCount: overrideCount,
		ApprovalRate:  approvalRate,
	}, nil
}
