package models

type Organization struct {
	Base
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Orgname        string `json:"orgname"`
	HashedPassword string `json:"hashed_password"`
}

func (o *Organization) Identity() string {
	return o.Orgname
}
