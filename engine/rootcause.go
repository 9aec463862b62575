package engine

import (
	"math"
	"sort"
	"time"

	"datalens/domain/analysis"
)

const (
	causeCandidateFloor = 0.3 // minimum |r| to rank as a candidate
	maxCauseCandidates  = 5
	causalChainLength   = 3
)

// analyzeRootCauses ranks candidate explanations for every field whose
// trend contains change points. Candidates are other numeric fields,
// ranked purely by correlation strength. This is ranked association, not
// causal inference: no instruments, no lag testing, no interventions. The
// type name says as much so downstream consumers cannot over-claim.
//
// The pass detects change points itself with the same sliding window the
// trend pass uses, which keeps it independent enough to run concurrently
// with every other pass over the same immutable dataset.
func (e *Engine) analyzeRootCauses(ds analysis.Dataset, fields []string, axis []time.Time) []analysis.CorrelationBasedCauses {
	vectors := make(map[string]series, len(fields))
	for _, field := range fields {
		vectors[field] = extractSeries(ds, field, axis)
	}

	results := make([]analysis.CorrelationBasedCauses, 0)
	for _, effect := range fields {
		s := vectors[effect]
		if len(s.Values) < minTrendSamples || len(detectChangePoints(s)) == 0 {
			continue
		}

		candidates := e.rankCandidates(effect, fields, vectors)
		if len(candidates) == 0 {
			continue
		}

		chain := make([]string, 0, causalChainLength)
		for _, c := range candidates {
			if len(chain) == causalChainLength {
				break
			}
			chain = append(chain, c.Field)
		}

		results = append(results, analysis.CorrelationBasedCauses{
			Effect:      effect,
			Candidates:  candidates,
			CausalChain: chain,
		})
	}
	return results
}

func (e *Engine) rankCandidates(effect string, fields []string, vectors map[string]series) []analysis.CauseCandidate {
	x := vectors[effect].Values

	var candidates []analysis.CauseCandidate
	for _, other := range fields {
		if other == effect {
			continue
		}
		y := vectors[other].Values
		if len(y) != len(x) || len(y) < minCorrelationSamples {
			continue
		}
		r := pearson(x, y)
		if math.Abs(r) <= causeCandidateFloor {
			continue
		}

		rc := clamp(r, -clampedCorrelation, clampedCorrelation)
		tStat := rc * math.Sqrt(float64(len(x)-2)/(1-rc*rc))
		pValue := e.dist.TwoTailedT(tStat, len(x)-2)

		candidates = append(candidates, analysis.CauseCandidate{
			Field:        other,
			R:            r,
			Contribution: math.Abs(r) * 100,
			Confidence:   clamp(1-pValue, 0, 1),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Contribution != candidates[j].Contribution {
			return candidates[i].Contribution > candidates[j].Contribution
		}
		return candidates[i].Field < candidates[j].Field
	})
	if len(candidates) > maxCauseCandidates {
		candidates = candidates[:maxCauseCandidates]
	}
	return candidates
}
