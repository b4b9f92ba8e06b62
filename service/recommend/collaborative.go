package recommend

import "github.com/felipe-nonato/Saber-IFPB/model"

// collaborativeScores credits each book with the Jaccard similarity of every
// other reader who read it, scaled so the best book scores 1.
func collaborativeScores(userID string, own map[string]int, all []model.ReadingRecord) map[string]float64 {
	others := make(map[string]map[string]bool)
	for _, rec := range all {
		if rec.UserID == userID {
			continue
		}
		set, ok := others[rec.UserID]
		if !ok {
			set = make(map[string]bool)
			others[rec.UserID] = set
		}
		set[rec.BookID] = true
	}

	scores := make(map[string]float64)
	for _, set := range others {
		sim := jaccard(own, set)
		if sim == 0 {
			continue
		}
		for bookID := range set {
			if _, read := own[bookID]; !read {
				scores[bookID] += sim
			}
		}
	}
	normalizeByMax(scores)
	return scores
}

func jaccard(a map[string]int, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for id := range a {
		if b[id] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
