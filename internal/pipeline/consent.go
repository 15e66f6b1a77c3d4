package pipeline

import (
	"strings"

	"github.com/sells-group/carenav/internal/model"
)

var consentQuestions = []string{
	"What costs are my responsibility?",
	"Who should I contact with billing questions?",
}

// ReviewConsent splits a consent document into before-you-sign buckets.
//
// The buckets are positional: the first clause is the key commitment and
// the second is flagged as confusing or vague. Clause content is not
// analysed, and the result carries Heuristic so callers can say so.
func ReviewConsent(consent model.Consent) model.ConsentReview {
	clauses := consent.Clauses

	key := []string{}
	if len(clauses) > 0 {
		key = append(key, clauses[0])
	}
	vague := []string{}
	if len(clauses) > 1 {
		vague = append(vague, clauses[1])
	}

	return model.ConsentReview{
		DocumentType: consent.DocumentType,
		Summary:      strings.Join(clauses, "; "),
		BeforeYouSign: model.BeforeYouSign{
			KeyCommitments:   key,
			ConfusingOrVague: vague,
			MissingFields:    orEmpty(consent.MissingFields),
			QuestionsToAsk:   append([]string(nil), consentQuestions...),
		},
		Heuristic: model.ConsentHeuristicPositional,
	}
}
