package recheck

import (
	"fmt"

	"annoflow/domain"
)

type Verdict string

const (
	VerdictApproved Verdict = "APPROVED"
	VerdictRejected Verdict = "REJECTED"
)

// CorrectnessPolicy classifies a submitted subtask from its stored
// annotations. Implementations must be deterministic: the same stored
// content always yields the same verdict, which is what makes the recheck
// engine idempotent.
type CorrectnessPolicy interface {
	Name() string
	Evaluate(subtask *domain.AnnotationSubtask, annotations []domain.Annotation) (Verdict, string)
}

// ConsensusPolicy approves a subtask when a sufficient fraction of its rows
// carry agreeing annotation content. Rows without any annotation count
// against the subtask.
type ConsensusPolicy struct {
	MinAgreement float64
}

func (p ConsensusPolicy) Name() string {
	return "consensus"
}

func (p ConsensusPolicy) Evaluate(subtask *domain.AnnotationSubtask, annotations []domain.Annotation) (Verdict, string) {
	if subtask.RowCount <= 0 {
		return VerdictRejected, "subtask has no rows"
	}

	contentByRow := map[int][]string{}
	for _, a := range annotations {
		contentByRow[a.RowIndex] = append(contentByRow[a.RowIndex], a.Content)
	}

	agreedRows := 0
	for _, contents := range contentByRow {
		counts := map[string]int{}
		best := 0
		for _, content := range contents {
			counts[content]++
			if counts[content] > best {
				best = counts[content]
			}
		}
		if float64(best)/float64(len(contents)) >= p.MinAgreement {
			agreedRows++
		}
	}

	score := float64(agreedRows) / float64(subtask.RowCount)
	reason := fmt.Sprintf("consensus: %d of %d rows agree (min agreement %.2f)",
		agreedRows, subtask.RowCount, p.MinAgreement)
	if score >= p.MinAgreement {
		return VerdictApproved, reason
	}
	return VerdictRejected, reason
}
