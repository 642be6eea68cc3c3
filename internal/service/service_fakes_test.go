package service

import (
	"context"

	"github.com/EngineerSamet/document-management-system-sub000/internal/engine"
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
	"github.com/EngineerSamet/document-management-system-sub000/internal/repository"
)

// fakeStore 内存聚合存储,支撑服务层测试
type fakeStore struct {
	users      map[string]*model.UserModel
	docs       map[string]*model.DocumentModel
	flows      map[string]*model.FlowModel
	templates  map[string]*model.FlowModel
	docHistory map[string][]*model.DocumentHistoryModel

	// docLocks 统计文档行锁次数;flowCreateHook 在流落库前插入,用于模拟并发写
	docLocks       int
	flowCreateHook func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[string]*model.UserModel),
		docs:       make(map[string]*model.DocumentModel),
		flows:      make(map[string]*model.FlowModel),
		templates:  make(map[string]*model.FlowModel),
		docHistory: make(map[string][]*model.DocumentHistoryModel),
	}
}

func (s *fakeStore) addUser(id string, role model.Role) *model.UserModel {
	user := &model.UserModel{ID: id, Name: id, Role: role}
	s.users[id] = user
	return user
}

func (s *fakeStore) addDocument(id, ownerID string, status model.DocumentStatus) *model.DocumentModel {
	doc := &model.DocumentModel{
		ID:      id,
		Title:   "doc " + id,
		Status:  status,
		OwnerID: ownerID,
	}
	s.docs[id] = doc
	return doc
}

func (s *fakeStore) addFlow(flow *model.FlowModel) *model.FlowModel {
	s.flows[flow.ID] = flow
	return flow
}

// fakeTxManager 直接在同一存储上执行,不模拟回滚
type fakeTxManager struct {
	store *fakeStore
}

func newFakeTxManager(store *fakeStore) repository.TxManager {
	return &fakeTxManager{store: store}
}

func (m *fakeTxManager) Repos() repository.Repositories {
	return repository.Repositories{
		Documents: &fakeDocumentRepo{store: m.store},
		Flows:     &fakeFlowRepo{store: m.store},
		Users:     &fakeUserRepo{store: m.store},
	}
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	return fn(m.Repos())
}

// fakeUserRepo 用户仓储假实现
type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.UserModel) error {
	r.store.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.UserModel, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, engine.NewNotFoundError("user", id)
	}
	return user, nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.UserModel, error) {
	users := make([]*model.UserModel, 0, len(ids))
	for _, id := range ids {
		user, ok := r.store.users[id]
		if !ok {
			return nil, engine.NewNotFoundError("user", id)
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.UserModel, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, engine.NewNotFoundError("user", email)
}

// fakeDocumentRepo 文档仓储假实现
type fakeDocumentRepo struct {
	store *fakeStore
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *model.DocumentModel) error {
	r.store.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) FindByID(ctx context.Context, id string) (*model.DocumentModel, error) {
	doc, ok := r.store.docs[id]
	if !ok {
		return nil, engine.NewNotFoundError("document", id)
	}
	return doc, nil
}

func (r *fakeDocumentRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.DocumentModel, error) {
	r.store.docLocks++
	return r.FindByID(ctx, id)
}

func (r *fakeDocumentRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*model.DocumentModel, error) {
	docs := make(map[string]*model.DocumentModel, len(ids))
	for _, id := range ids {
		if doc, ok := r.store.docs[id]; ok {
			docs[id] = doc
		}
	}
	return docs, nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, doc *model.DocumentModel) error {
	if _, ok := r.store.docs[doc.ID]; !ok {
		return engine.NewNotFoundError("document", doc.ID)
	}
	r.store.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocumentRepo) AppendHistory(ctx context.Context, entry *model.DocumentHistoryModel) error {
	r.store.docHistory[entry.DocumentID] = append(r.store.docHistory[entry.DocumentID], entry)
	return nil
}

func (r *fakeDocumentRepo) ListHistory(ctx context.Context, documentID string) ([]*model.DocumentHistoryModel, error) {
	return r.store.docHistory[documentID], nil
}

func (r *fakeDocumentRepo) FindByFilter(ctx context.Context, filter *repository.DocumentFilter) ([]*model.DocumentModel, int64, error) {
	var docs []*model.DocumentModel
	for _, doc := range r.store.docs {
		if filter.OwnerID != nil && doc.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, int64(len(docs)), nil
}

// fakeFlowRepo 审批流仓储假实现,Update 模拟乐观锁
type fakeFlowRepo struct {
	store *fakeStore
}

func (r *fakeFlowRepo) Create(ctx context.Context, flow *model.FlowModel) error {
	if flow.IsTemplate {
		r.store.templates[flow.ID] = flow
		return nil
	}
	if r.store.flowCreateHook != nil {
		r.store.flowCreateHook()
	}
	// 与库里的部分唯一索引一致: 一个文档最多一条非模板流
	if flow.DocumentID != nil {
		for _, existing := range r.store.flows {
			if existing.DocumentID != nil && *existing.DocumentID == *flow.DocumentID {
				return engine.NewConsistencyError("flow already exists for document %s", *flow.DocumentID)
			}
		}
	}
	r.store.flows[flow.ID] = flow
	return nil
}

func (r *fakeFlowRepo) FindByID(ctx context.Context, id string) (*model.FlowModel, error) {
	flow, ok := r.store.flows[id]
	if !ok {
		return nil, engine.NewNotFoundError("flow", id)
	}
	return flow, nil
}

func (r *fakeFlowRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.FlowModel, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeFlowRepo) FindByDocument(ctx context.Context, documentID string) (*model.FlowModel, error) {
	for _, flow := range r.store.flows {
		if flow.DocumentID != nil && *flow.DocumentID == documentID {
			return flow, nil
		}
	}
	return nil, nil
}

func (r *fakeFlowRepo) Update(ctx context.Context, flow *model.FlowModel, entries ...*model.FlowHistoryModel) error {
	current := flow.Version
	stored, ok := r.store.flows[flow.ID]
	if !ok || stored.Version != current {
		return engine.NewConsistencyError("flow %s was modified concurrently", flow.ID)
	}
	flow.Version = current + 1
	r.store.flows[flow.ID] = flow
	return nil
}

func (r *fakeFlowRepo) ListForApprover(ctx context.Context, approverID string, status *model.FlowStatus, offset, limit int) ([]*model.FlowModel, int64, error) {
	var flows []*model.FlowModel
	for _, flow := range r.store.flows {
		if flow.IsTemplate || !flow.HasApprover(approverID) {
			continue
		}
		if status != nil && flow.Status != *status {
			continue
		}
		flows = append(flows, flow)
	}
	total := int64(len(flows))
	if limit < 0 {
		return flows, total, nil
	}
	if offset > len(flows) {
		offset = len(flows)
	}
	end := offset + limit
	if end > len(flows) {
		end = len(flows)
	}
	return flows[offset:end], total, nil
}

func (r *fakeFlowRepo) FindTemplate(ctx context.Context, id string) (*model.FlowModel, error) {
	template, ok := r.store.templates[id]
	if !ok {
		return nil, engine.NewNotFoundError("template", id)
	}
	return template, nil
}

func (r *fakeFlowRepo) ListTemplates(ctx context.Context) ([]*model.FlowModel, error) {
	var templates []*model.FlowModel
	for _, template := range r.store.templates {
		templates = append(templates, template)
	}
	return templates, nil
}

func (r *fakeFlowRepo) DeleteTemplate(ctx context.Context, id string) error {
	if _, ok := r.store.templates[id]; !ok {
		return engine.NewNotFoundError("template", id)
	}
	delete(r.store.templates, id)
	return nil
}

// recordingAudit 记录审计事实供断言
type recordingAudit struct {
	facts []*AuditFact
}

func (a *recordingAudit) Record(ctx context.Context, fact *AuditFact) error {
	a.facts = append(a.facts, fact)
	return nil
}

func (a *recordingAudit) List(ctx context.Context, filter *repository.AuditLogFilter) ([]*model.AuditLogModel, int64, error) {
	return nil, 0, nil
}

func (a *recordingAudit) last() *AuditFact {
	if len(a.facts) == 0 {
		return nil
	}
	return a.facts[len(a.facts)-1]
}

// recordingPublisher 记录审批流事件供断言
type recordingPublisher struct {
	events []*FlowEvent
}

func (p *recordingPublisher) PublishFlowEvent(event *FlowEvent) {
	p.events = append(p.events, event)
}

// pendingFlowFor 构造一条第 1 步 pending 的审批流并挂到文档上
func pendingFlowFor(store *fakeStore, doc *model.DocumentModel, flowType model.FlowType, approverIDs ...string) *model.FlowModel {
	docID := doc.ID
	flow := &model.FlowModel{
		ID:               "flow-" + doc.ID,
		DocumentID:       &docID,
		FlowType:         flowType,
		Status:           model.FlowStatusPending,
		CurrentStepOrder: 1,
		CreatedBy:        doc.OwnerID,
		Version:          1,
	}
	for i, approverID := range approverIDs {
		status := model.StepStatusWaiting
		if i == 0 {
			status = model.StepStatusPending
		}
		flow.Steps = append(flow.Steps, model.StepModel{
			ID:         flow.ID + "-step-" + approverID,
			FlowID:     flow.ID,
			Order:      i + 1,
			ApproverID: approverID,
			Status:     status,
		})
	}
	store.addFlow(flow)

	flowID := flow.ID
	doc.Status = model.DocumentStatusInReview
	doc.FlowID = &flowID
	doc.CurrentStepOrder = 1
	approver := approverIDs[0]
	doc.CurrentApproverID = &approver
	return flow
}
