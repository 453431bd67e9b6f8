// Package queue provides the in-process task queue and its worker.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"conferencecentral/internal/domain"
)

const defaultBuffer = 64

// Renderer produces the subject and bodies for a named email template.
type Renderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// InProcess is a buffered in-process TaskQueue with a single worker
// goroutine. Tasks are best-effort: a failed task is logged and dropped,
// never retried or propagated to the producer.
type InProcess struct {
	tasks    chan domain.Task
	mailer   domain.Mailer
	renderer Renderer
	logger   *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewInProcess starts the worker and returns the queue. Call Close to drain
// and stop it.
func NewInProcess(mailer domain.Mailer, renderer Renderer, logger *slog.Logger) *InProcess {
	q := &InProcess{
		tasks:    make(chan domain.Task, defaultBuffer),
		mailer:   mailer,
		renderer: renderer,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *InProcess) Enqueue(ctx context.Context, task domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("task queue full, dropping %s", task.Name)
	}
}

// Close stops accepting tasks, waits for the worker to drain the buffer, and
// returns.
func (q *InProcess) Close() {
	q.closeOnce.Do(func() { close(q.tasks) })
	<-q.done
}

func (q *InProcess) run() {
	defer close(q.done)
	for task := range q.tasks {
		if err := q.handle(task); err != nil {
			q.logger.Warn("task failed",
				slog.String("task", task.Name),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (q *InProcess) handle(task domain.Task) error {
	switch task.Name {
	case domain.TaskSendConfirmationEmail:
		return q.sendConfirmationEmail(task.Payload)
	default:
		return fmt.Errorf("unknown task %q", task.Name)
	}
}

func (q *InProcess) sendConfirmationEmail(payload map[string]string) error {
	to := payload["email"]
	if to == "" {
		return fmt.Errorf("confirmation email task without recipient")
	}
	subject, html, text, err := q.renderer.Render("confirmation", map[string]string{
		"ConferenceName": payload["conferenceName"],
	})
	if err != nil {
		return fmt.Errorf("render confirmation email: %w", err)
	}
	if err := q.mailer.Send(to, subject, html, text); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}
