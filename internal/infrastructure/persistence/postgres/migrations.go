// Package postgres implements PostgreSQL persistence layer for Conference Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students and student record tables
-- Version: 001

-- Main students table. Profile sections are denormalized as JSONB: the
-- recommendation engine always reads the whole card, and sections evolve
-- faster than we want to run ALTER TABLE.
CREATE TABLE IF NOT EXISTS students (
    id VARCHAR(12) PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    grade VARCHAR(10) NOT NULL,
    section VARCHAR(10) NOT NULL DEFAULT '',
    date_of_birth DATE,
    roll_number INTEGER NOT NULL DEFAULT 0,
    parent_email VARCHAR(255) NOT NULL DEFAULT '',
    parent_phone VARCHAR(50) NOT NULL DEFAULT '',
    teacher_id VARCHAR(12) NOT NULL DEFAULT '',
    academic_year VARCHAR(9) NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    current_gpa DECIMAL(3,2) NOT NULL DEFAULT 0.00,
    attendance_rate DECIMAL(4,3) NOT NULL DEFAULT 0.000,
    last_meeting_prep TIMESTAMP WITH TIME ZONE,
    academic JSONB NOT NULL DEFAULT '{}'::jsonb,
    behavioral JSONB NOT NULL DEFAULT '{}'::jsonb,
    extracurricular JSONB NOT NULL DEFAULT '{}'::jsonb,
    parent_engagement JSONB NOT NULL DEFAULT '{}'::jsonb,
    goals JSONB NOT NULL DEFAULT '{}'::jsonb,
    teacher_notes JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    deleted_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT valid_status CHECK (status IN ('active', 'inactive', 'transferred', 'graduated')),
    CONSTRAINT valid_gpa CHECK (current_gpa >= 0 AND current_gpa <= 4.0),
    CONSTRAINT valid_attendance CHECK (attendance_rate >= 0 AND attendance_rate <= 1)
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_students_grade ON students(grade) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_students_teacher ON students(teacher_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_students_status ON students(status);
CREATE INDEX IF NOT EXISTS idx_students_last_name ON students(last_name, first_name);
CREATE INDEX IF NOT EXISTS idx_students_updated_at ON students(updated_at);

-- Roll numbers are unique within a class section for enrolled students
CREATE UNIQUE INDEX IF NOT EXISTS idx_students_roll_number
    ON students(grade, section, roll_number)
    WHERE roll_number > 0 AND deleted_at IS NULL;

-- Assessments - the primary source of academic data
CREATE TABLE IF NOT EXISTS assessments (
    id VARCHAR(18) PRIMARY KEY,
    student_id VARCHAR(12) NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    subject VARCHAR(50) NOT NULL,
    type VARCHAR(20) NOT NULL,
    date TIMESTAMP WITH TIME ZONE NOT NULL,
    score DECIMAL(6,2) NOT NULL,
    max_score DECIMAL(6,2) NOT NULL,
    percentage DECIMAL(5,2) NOT NULL,
    topics JSONB NOT NULL DEFAULT '[]'::jsonb,
    teacher_feedback TEXT NOT NULL DEFAULT '',
    difficulty VARCHAR(10) NOT NULL DEFAULT 'medium',
    time_spent_minutes INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_assessment_type CHECK (type IN ('quiz', 'test', 'project', 'assignment', 'exam')),
    CONSTRAINT valid_scores CHECK (max_score > 0 AND score >= 0 AND score <= max_score)
);

CREATE INDEX IF NOT EXISTS idx_assessments_student ON assessments(student_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_assessments_subject ON assessments(student_id, subject, date DESC);
CREATE INDEX IF NOT EXISTS idx_assessments_created ON assessments(created_at DESC);

-- Behavioral incidents, both positive and negative
CREATE TABLE IF NOT EXISTS incidents (
    id VARCHAR(15) PRIMARY KEY,
    student_id VARCHAR(12) NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    date TIMESTAMP WITH TIME ZONE NOT NULL,
    type VARCHAR(10) NOT NULL,
    category VARCHAR(30) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    severity VARCHAR(10) NOT NULL DEFAULT 'low',
    action_taken TEXT NOT NULL DEFAULT '',
    follow_up_required BOOLEAN NOT NULL DEFAULT FALSE,
    teacher_id VARCHAR(12) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_incident_type CHECK (type IN ('positive', 'negative')),
    CONSTRAINT valid_severity CHECK (severity IN ('low', 'medium', 'high'))
);

CREATE INDEX IF NOT EXISTS idx_incidents_student ON incidents(student_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_incidents_follow_up ON incidents(student_id) WHERE follow_up_required;

-- Parent communication log
CREATE TABLE IF NOT EXISTS communications (
    id VARCHAR(16) PRIMARY KEY,
    student_id VARCHAR(12) NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    date TIMESTAMP WITH TIME ZONE NOT NULL,
    type VARCHAR(10) NOT NULL,
    initiated_by VARCHAR(10) NOT NULL DEFAULT 'teacher',
    subject VARCHAR(255) NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    follow_up_needed BOOLEAN NOT NULL DEFAULT FALSE,
    follow_up_date TIMESTAMP WITH TIME ZONE,
    teacher_id VARCHAR(12) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_communication_type CHECK (type IN ('email', 'phone', 'meeting', 'note')),
    CONSTRAINT valid_initiator CHECK (initiated_by IN ('teacher', 'parent'))
);

CREATE INDEX IF NOT EXISTS idx_communications_student ON communications(student_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_communications_follow_up ON communications(follow_up_date) WHERE follow_up_needed;

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_students_updated_at ON students;
CREATE TRIGGER update_students_updated_at
    BEFORE UPDATE ON students
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE MEETINGS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create meetings table
-- Version: 002
-- Purpose: Scheduled parent-teacher meetings and their preparation state

CREATE TABLE IF NOT EXISTS meetings (
    id VARCHAR(12) PRIMARY KEY,
    student_id VARCHAR(12) NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    teacher_id VARCHAR(12) NOT NULL DEFAULT '',
    scheduled_for TIMESTAMP WITH TIME ZONE NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
    notes TEXT NOT NULL DEFAULT '',
    prepared_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_meeting_status CHECK (status IN ('scheduled', 'prepared', 'completed', 'cancelled'))
);

CREATE INDEX IF NOT EXISTS idx_meetings_student ON meetings(student_id, scheduled_for DESC);
CREATE INDEX IF NOT EXISTS idx_meetings_teacher ON meetings(teacher_id, scheduled_for);
CREATE INDEX IF NOT EXISTS idx_meetings_upcoming ON meetings(scheduled_for)
    WHERE status IN ('scheduled', 'prepared');
CREATE INDEX IF NOT EXISTS idx_meetings_unprepared ON meetings(scheduled_for)
    WHERE status = 'scheduled';

DROP TRIGGER IF EXISTS update_meetings_updated_at ON meetings;
CREATE TRIGGER update_meetings_updated_at
    BEFORE UPDATE ON meetings
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE NOTIFICATIONS AND SNAPSHOTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create notifications and grade snapshot tables
-- Version: 003

-- Outbound notifications with delivery lifecycle
CREATE TABLE IF NOT EXISTS notifications (
    id VARCHAR(12) PRIMARY KEY,
    recipient_id VARCHAR(50) NOT NULL,
    channel VARCHAR(10) NOT NULL,
    type VARCHAR(30) NOT NULL,
    priority VARCHAR(10) NOT NULL DEFAULT 'normal',
    subject VARCHAR(255) NOT NULL DEFAULT '',
    message TEXT NOT NULL,
    student_id VARCHAR(12) NOT NULL DEFAULT '',
    meeting_id VARCHAR(12) NOT NULL DEFAULT '',
    status VARCHAR(10) NOT NULL DEFAULT 'pending',
    retry_count INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT '',
    scheduled_for TIMESTAMP WITH TIME ZONE,
    sent_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_notification_channel CHECK (channel IN ('email', 'sms')),
    CONSTRAINT valid_notification_status CHECK (status IN ('pending', 'sending', 'sent', 'failed', 'cancelled')),
    CONSTRAINT valid_notification_priority CHECK (priority IN ('high', 'normal', 'low'))
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_due ON notifications(scheduled_for)
    WHERE status IN ('pending', 'failed');
CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status);

-- Grade snapshots: the read model behind the grade overview.
-- Standings are stored as JSONB because they are always read whole.
CREATE TABLE IF NOT EXISTS grade_snapshots (
    id VARCHAR(12) PRIMARY KEY,
    grade VARCHAR(10) NOT NULL,
    academic_year VARCHAR(9) NOT NULL,
    snapshot_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    student_count INTEGER NOT NULL DEFAULT 0,
    average_gpa DECIMAL(3,2) NOT NULL DEFAULT 0.00,
    average_attendance DECIMAL(4,3) NOT NULL DEFAULT 0.000,
    at_risk_count INTEGER NOT NULL DEFAULT 0,
    subject_averages JSONB NOT NULL DEFAULT '{}'::jsonb,
    standings JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_grade_snapshots_grade ON grade_snapshots(grade, academic_year, snapshot_at DESC);
CREATE INDEX IF NOT EXISTS idx_grade_snapshots_at ON grade_snapshots(snapshot_at DESC);

DROP TRIGGER IF EXISTS update_notifications_updated_at ON notifications;
CREATE TRIGGER update_notifications_updated_at
    BEFORE UPDATE ON notifications
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

// GetMigrations returns the schema steps in version order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_students", UpSQL: migration001Up},
		{Version: 2, Name: "create_meetings", UpSQL: migration002Up},
		{Version: 3, Name: "create_notifications_and_snapshots", UpSQL: migration003Up},
	}
}
