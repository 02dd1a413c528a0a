package entity

import (
	"strings"
	"time"
)

// AuditAction tipo de mutación auditada.
type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// EntityKind tipo de entidad auditada.
type EntityKind string

const (
	KindVehicle EntityKind = "VEHICLE"
	KindCompany EntityKind = "COMPANY"
	KindUser    EntityKind = "USER"
)

// ParseEntityKind acepta el nombre en cualquier capitalización.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch EntityKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindVehicle:
		return KindVehicle, true
	case KindCompany:
		return KindCompany, true
	case KindUser:
		return KindUser, true
	}
	return "", false
}

// AuditEntry registro inmutable de una mutación. Before vacío en CREATE, After vacío en DELETE.
type AuditEntry struct {
	ID         string
	Action     AuditAction
	EntityKind EntityKind
	EntityID   string
	ActorEmail string
	CompanyID  *string
	Before     string // JSON
	After      string // JSON
	Note       string
	CreatedAt  time.Time
}
