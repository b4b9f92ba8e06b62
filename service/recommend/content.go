package recommend

import (
	"strings"

	"github.com/felipe-nonato/Saber-IFPB/model"
)

const (
	categoryWeight = 0.6
	authorWeight   = 0.4
)

// profile holds category and author affinities, each scaled so the strongest
// entry is 1.
type profile struct {
	categories map[string]float64
	authors    map[string]float64
}

// ratingWeight maps 1..5 stars onto 0..1; a one-star read adds nothing.
func ratingWeight(rating int) float64 {
	w := float64(rating-1) / 4
	if w < 0 {
		return 0
	}
	return w
}

func buildProfile(books []model.Book, ratings map[string]int) profile {
	p := profile{
		categories: make(map[string]float64),
		authors:    make(map[string]float64),
	}
	for _, b := range books {
		rating, ok := ratings[b.ID]
		if !ok {
			continue
		}
		w := ratingWeight(rating)
		if w == 0 {
			continue
		}
		for _, c := range b.Categories() {
			p.categories[strings.ToLower(c)] += w
		}
		for _, a := range b.Authors() {
			p.authors[strings.ToLower(a)] += w
		}
	}
	normalizeByMax(p.categories)
	normalizeByMax(p.authors)
	return p
}

// score is the content affinity of b along with the author and category
// values that matched the profile.
func (p profile) score(b model.Book) (float64, []string, []string) {
	var (
		bestCat, bestAuthor float64
		authors             = []string{}
		categories          = []string{}
	)
	for _, c := range b.Categories() {
		if w := p.categories[strings.ToLower(c)]; w > 0 {
			categories = append(categories, c)
			bestCat = max(bestCat, w)
		}
	}
	for _, a := range b.Authors() {
		if w := p.authors[strings.ToLower(a)]; w > 0 {
			authors = append(authors, a)
			bestAuthor = max(bestAuthor, w)
		}
	}
	return categoryWeight*bestCat + authorWeight*bestAuthor, authors, categories
}

func normalizeByMax(m map[string]float64) {
	var top float64
	for _, v := range m {
		top = max(top, v)
	}
	if top <= 0 {
		return
	}
	for k, v := range m {
		m[k] = v / top
	}
}
