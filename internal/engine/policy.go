package engine

import (
	"github.com/EngineerSamet/document-management-system-sub000/internal/model"
)

// ManagerOverAdminException 跨角色特例: MANAGER 审批 ADMIN 的文档
// 当文档所有者是 ADMIN 且操作人是 MANAGER,并且该 MANAGER 出现在审批流的
// 步骤列表中、名下仍有开放步骤时,放宽"必须是当前步骤审批人"的限制。
// 该特例不绕过只读角色、终态、重复审批和本人文档这四条前置规则。
func ManagerOverAdminException(actor *model.UserModel, ownerRole model.Role, flow *model.FlowModel) bool {
	if actor == nil || flow == nil {
		return false
	}
	if actor.Role != model.RoleManager || ownerRole != model.RoleAdmin {
		return false
	}
	for _, step := range flow.StepsOf(actor.ID) {
		if step.Status.Open() {
			return true
		}
	}
	return false
}
