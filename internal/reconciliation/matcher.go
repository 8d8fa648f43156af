package reconciliation

import (
	"log"

	"github.com/antzucaro/matchr"
	"github.com/fortuna/sidelined/internal/model"
)

// minSuggestionSimilarity is the Jaro-Winkler score below which no suggestion
// is offered for an unmatched name.
const minSuggestionSimilarity = 0.85

// Matcher finds injured players with no performance stint to allocate against.
type Matcher struct {
	known  map[string]bool
	names  []string
	logger *log.Logger
}

// NewMatcher indexes the player identities present in the performance data.
func NewMatcher(stints []model.PerformanceStint, logger *log.Logger) *Matcher {
	if logger == nil {
		logger = log.New(log.Writer(), "[reconcile] ", log.LstdFlags)
	}

	m := &Matcher{
		known:  make(map[string]bool, len(stints)),
		logger: logger,
	}
	for _, s := range stints {
		if s.Player == "" || m.known[s.Player] {
			continue
		}
		m.known[s.Player] = true
		m.names = append(m.names, s.Player)
	}
	return m
}

// Has reports whether player has at least one stint.
func (m *Matcher) Has(player string) bool {
	return m.known[player]
}

// FindGaps returns one JoinGap per injured player absent from the performance
// data. Gaps are warnings: the player simply contributes nothing.
func (m *Matcher) FindGaps(injuries []model.InjuryRecord) []model.JoinGap {
	var gaps []model.JoinGap
	seen := make(map[string]bool)

	for _, inj := range injuries {
		if inj.Player == "" || m.known[inj.Player] || seen[inj.Player] {
			continue
		}
		seen[inj.Player] = true

		gap := model.JoinGap{
			Player:      inj.Player,
			Team:        inj.Team,
			GamesMissed: inj.GamesMissed,
			Suggestion:  m.Suggest(inj.Player),
		}
		if gap.Suggestion != "" {
			m.logger.Printf("⚠️  %s (%s, %d games) has no stint; closest name is %q", gap.Player, gap.Team, gap.GamesMissed, gap.Suggestion)
		} else {
			m.logger.Printf("⚠️  %s (%s, %d games) has no stint", gap.Player, gap.Team, gap.GamesMissed)
		}
		gaps = append(gaps, gap)
	}

	return gaps
}

// Suggest returns the most similar known name, or "" when nothing is close.
func (m *Matcher) Suggest(player string) string {
	best := ""
	var bestSimilarity float64
	for _, name := range m.names {
		sim := matchr.JaroWinkler(player, name, false)
		if sim > bestSimilarity {
			bestSimilarity = sim
			best = name
		}
	}
	if bestSimilarity < minSuggestionSimilarity {
		return ""
	}
	return best
}
