package rental

import "github.com/felipe-nonato/Saber-IFPB/model"

type DepositReq struct {
	Title    string `json:"title" validate:"required,max=300"`
	Author   string `json:"author" validate:"required,max=300"`
	Category string `json:"category" validate:"max=200"`
	ISBN     string `json:"isbn" validate:"omitempty,max=20"`
	Synopsis string `json:"synopsis"`
	Cover    string `json:"cover" validate:"omitempty,url"`
	Year     int    `json:"year" validate:"gte=0,lte=9999"`
	Pages    int    `json:"pages" validate:"gte=0"`
}

func (r DepositReq) toModel() model.NewBook {
	return model.NewBook{
		Title:    r.Title,
		Author:   r.Author,
		Category: r.Category,
		ISBN:     r.ISBN,
		Synopsis: r.Synopsis,
		Cover:    r.Cover,
		Year:     r.Year,
		Pages:    r.Pages,
	}
}

// ReturnReq may be empty; a rating records the read.
type ReturnReq struct {
	Rating *int `json:"rating" validate:"omitempty,gte=1,lte=5"`
}
