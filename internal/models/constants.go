package models

// Роли пользователей платформы
const (
	RoleCustomer = "customer"
	RoleArtisan  = "artisan"
	RoleAdmin    = "admin"
)

// RequestStatus константы статусов заявок на услуги
const (
	RequestStatusPending    = "pending"
	RequestStatusAssigned   = "assigned"
	RequestStatusInProgress = "in_progress"
	RequestStatusCompleted  = "completed"
	RequestStatusCancelled  = "cancelled"
)

// Availability константы доступности мастера
const (
	AvailabilityAvailable = "available"
	AvailabilityBusy      = "busy"
	AvailabilityOffline   = "offline"
)

// WithdrawalStatus константы статусов выплат
const (
	WithdrawalStatusPending    = "pending"
	WithdrawalStatusProcessing = "processing"
	WithdrawalStatusCompleted  = "completed"
	WithdrawalStatusRejected   = "rejected"
)

// VerificationStatus константы статусов заявок на верификацию
const (
	VerificationStatusPending  = "pending"
	VerificationStatusApproved = "approved"
	VerificationStatusRejected = "rejected"
)

// NotificationType типы уведомлений
const (
	NotificationTypeNewRequest       = "new_request"
	NotificationTypeJobAssigned      = "job_assigned"
	NotificationTypeArtisanAssigned  = "artisan_assigned"
	NotificationTypeJobAccepted      = "job_accepted"
	NotificationTypeJobCompleted     = "job_completed"
	NotificationTypeServiceCompleted = "service_completed"
	NotificationTypeStatusUpdate     = "status_update"
	NotificationTypeAccountVerified  = "account_verified"
	NotificationTypeWithdrawalUpdate = "withdrawal_update"
	NotificationTypeVerification     = "verification_request"
)

// ValidRoles список валидных ролей
var ValidRoles = map[string]bool{
	RoleCustomer: true,
	RoleArtisan:  true,
	RoleAdmin:    true,
}

// ValidRequestStatuses список валидных статусов заявок
var ValidRequestStatuses = map[string]bool{
	RequestStatusPending:    true,
	RequestStatusAssigned:   true,
	RequestStatusInProgress: true,
	RequestStatusCompleted:  true,
	RequestStatusCancelled:  true,
}

// RequestTransitions таблица допустимых переходов статуса заявки.
// Любой переход вне таблицы недопустим.
var RequestTransitions = map[string][]string{
	RequestStatusPending:    {RequestStatusAssigned, RequestStatusCancelled},
	RequestStatusAssigned:   {RequestStatusInProgress, RequestStatusCancelled},
	RequestStatusInProgress: {RequestStatusCompleted, RequestStatusCancelled},
	RequestStatusCompleted:  {},
	RequestStatusCancelled:  {},
}

// IsValidTransition проверяет наличие ребра (from, to) в таблице переходов.
func IsValidTransition(from, to string) bool {
	for _, allowed := range RequestTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus сообщает, является ли статус конечным.
func IsTerminalStatus(status string) bool {
	return status == RequestStatusCompleted || status == RequestStatusCancelled
}

// ValidAvailabilityStatuses список валидных статусов доступности
var ValidAvailabilityStatuses = map[string]bool{
	AvailabilityAvailable: true,
	AvailabilityBusy:      true,
	AvailabilityOffline:   true,
}

// ValidWithdrawalStatuses список валидных статусов выплат
var ValidWithdrawalStatuses = map[string]bool{
	WithdrawalStatusPending:    true,
	WithdrawalStatusProcessing: true,
	WithdrawalStatusCompleted:  true,
	WithdrawalStatusRejected:   true,
}
