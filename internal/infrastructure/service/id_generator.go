// Package service provides the thin adapters that connect the application
// layer to infrastructure: ID generation, profile assembly, snapshot
// building, the AI summarizer, and notification delivery.
package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDGenerator issues prefixed identifiers backed by random UUIDs.
// It satisfies the ID generator interfaces of both the command layer and
// the preparation saga.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUID-backed ID generator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// prefixedID returns prefix + "_" + n upper-case hex characters.
func prefixedID(prefix string, n int) string {
	id := uuid.New()
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return fmt.Sprintf("%s_%s", prefix, hex[:n])
}

// StudentID returns a new STU_XXXXXXXX identifier.
func (g *UUIDGenerator) StudentID() string {
	return prefixedID("STU", 8)
}

// AssessmentID returns a new ASSESS_XXXXXXXX identifier.
func (g *UUIDGenerator) AssessmentID() string {
	return prefixedID("ASSESS", 8)
}

// IncidentID returns a new INC_XXXXXXXX identifier.
func (g *UUIDGenerator) IncidentID() string {
	return prefixedID("INC", 8)
}

// CommunicationID returns a new COMM_XXXXXXXX identifier.
func (g *UUIDGenerator) CommunicationID() string {
	return prefixedID("COMM", 8)
}

// MeetingID returns a new MTG_XXXXXXXX identifier.
func (g *UUIDGenerator) MeetingID() string {
	return prefixedID("MTG", 8)
}

// NotificationID returns a new NTF_XXXXXXXX identifier.
func (g *UUIDGenerator) NotificationID() string {
	return prefixedID("NTF", 8)
}

// TeacherID returns a new TEACH_XXXXXX identifier.
func (g *UUIDGenerator) TeacherID() string {
	return prefixedID("TEACH", 6)
}

// SnapshotID returns a new SNAP_XXXXXXXX identifier.
func (g *UUIDGenerator) SnapshotID() string {
	return prefixedID("SNAP", 8)
}
