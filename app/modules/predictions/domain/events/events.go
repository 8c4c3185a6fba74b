package predictionsevents

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	"github.com/google/uuid"
)

const (
	// PredictionSubmittedTopic is published after a pick is stored.
	PredictionSubmittedTopic = "prediction.submitted"
	// BonusAnswerSubmittedTopic is published after a bonus answer is stored.
	BonusAnswerSubmittedTopic = "bonus_answer.submitted"
)

type PredictionSubmittedPayload struct {
	MemberID    uuid.UUID                 `json:"member_id"`
	MatchID     uuid.UUID                 `json:"match_id"`
	Pick        leaderboarddomain.Outcome `json:"pick"`
	SubmittedBy string                    `json:"submitted_by"`
	SubmittedAt time.Time                 `json:"submitted_at"`
}

type BonusAnswerSubmittedPayload struct {
	MemberID    uuid.UUID `json:"member_id"`
	QuestionID  uuid.UUID `json:"question_id"`
	Number      *float64  `json:"number,omitempty"`
	Choice      *string   `json:"choice,omitempty"`
	SubmittedBy string    `json:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at"`
}
