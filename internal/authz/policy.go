// Package authz decides whether a subject may act on a resource. Policy is a
// pure function over (subject, action, owner); the Guard wires it to
// ownership lookups so handlers get errors in the service taxonomy.
package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/errs"
)

// Action names a mutation a subject can request on a quiz.
type Action string

const (
	ActionUpdateQuiz    Action = "quiz:update"
	ActionDeleteQuiz    Action = "quiz:delete"
	ActionEditQuestions Action = "quiz:edit_questions"
)

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize evaluates whether subject may perform action on a resource owned
// by ownerID. Only owners may mutate their quizzes.
func Authorize(subject uuid.UUID, action Action, ownerID uuid.UUID) Decision {
	if subject == uuid.Nil {
		return Decision{Allowed: false, Reason: "no authenticated subject"}
	}
	if subject != ownerID {
		return Decision{Allowed: false, Reason: fmt.Sprintf("subject is not the owner for %s", action)}
	}
	return Decision{Allowed: true}
}

// OwnerResolver reports who owns a quiz. Satisfied by the quiz service.
type OwnerResolver interface {
	QuizOwner(ctx context.Context, quizID uuid.UUID) (uuid.UUID, error)
}

// Guard resolves quiz ownership and applies the policy, translating denials
// into the error kinds the HTTP layer maps to status codes.
type Guard struct {
	owners OwnerResolver
}

// NewGuard creates a Guard over an ownership source.
func NewGuard(owners OwnerResolver) *Guard {
	return &Guard{owners: owners}
}

// RequireQuizOwner checks that subject may perform action on the quiz.
// A missing quiz surfaces as not found, an unauthenticated subject as
// unauthorized, and a non-owner as forbidden.
func (g *Guard) RequireQuizOwner(ctx context.Context, subject uuid.UUID, action Action, quizID uuid.UUID) error {
	if subject == uuid.Nil {
		return fmt.Errorf("no authenticated subject: %w", errs.ErrUnauthorized)
	}
	ownerID, err := g.owners.QuizOwner(ctx, quizID)
	if err != nil {
		return err
	}
	if d := Authorize(subject, action, ownerID); !d.Allowed {
		return errs.Forbiddenf("%s", d.Reason)
	}
	return nil
}
