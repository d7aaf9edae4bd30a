package authority

// Role is the closed set of caller roles supplied by the identity surface.
type Role string

const (
	RoleWorker    Role = "WORKER"
	RolePublisher Role = "PUBLISHER"
	RoleAdmin     Role = "ADMIN"
)

type Capability string

const (
	ClaimSubtasks    Capability = "subtask.claim"
	AnnotateSubtasks Capability = "subtask.annotate"
	SubmitSubtasks   Capability = "subtask.submit"
	ReviewSubtasks   Capability = "subtask.review"
	RecheckTasks     Capability = "task.recheck"
	PublishTasks     Capability = "task.publish"
	ApproveTasks     Capability = "task.approve"
	ManageAnyTask    Capability = "task.manage_any"
	ManageAccounts   Capability = "account.manage"
)

// roleCapabilities is the single source of role checks. Review and recheck
// capabilities still require task ownership for non-admin callers, enforced
// at the call site.
var roleCapabilities = map[Role][]Capability{
	RoleWorker:    {ClaimSubtasks, AnnotateSubtasks, SubmitSubtasks},
	RolePublisher: {PublishTasks, ReviewSubtasks, RecheckTasks},
	RoleAdmin:     {ReviewSubtasks, RecheckTasks, ApproveTasks, ManageAnyTask, ManageAccounts},
}

func (r Role) HasCapability(c Capability) bool {
	for _, v := range roleCapabilities[r] {
		if v == c {
			return true
		}
	}
	return false
}

func (r Role) IsValid() bool {
	return r == RoleWorker || r == RolePublisher || r == RoleAdmin
}
