package catalog

type NameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type CreateModelRequest struct {
	MakeID int64  `json:"make_id" binding:"required,gt=0"`
	Name   string `json:"name" binding:"required,min=1,max=100"`
}
