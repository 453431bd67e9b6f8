package domain

import "context"

// TaskSendConfirmationEmail dispatches the conference-creation confirmation
// notice to the organizer.
const TaskSendConfirmationEmail = "send_confirmation_email"

// Task is a unit of deferred work.
type Task struct {
	Name    string
	Payload map[string]string
}

// TaskQueue enqueues fire-and-forget work. Enqueue failures must never roll
// back the operation that produced the task.
type TaskQueue interface {
	Enqueue(ctx context.Context, task Task) error
}

// Mailer defines the contract for sending emails (infrastructure port).
// Implementations may use SES, SMTP, etc.
type Mailer interface {
	Send(to, subject, html, text string) error
}
