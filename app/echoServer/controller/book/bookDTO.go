package book

type ListQuery struct {
	State string `query:"state" validate:"omitempty,oneof=available rented reserved"`
	Page  int    `query:"page" validate:"gte=0"`
}
