package user

// CreateDTO is the admin user-creation payload. The password is
// generated server-side and mailed to the new user.
type CreateDTO struct {
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Email     string  `json:"email"`
	Roles     []int64 `json:"roles"`
}

// UpdateDTO carries partial-field semantics: empty fields are treated as
// not submitted and left untouched.
type UpdateDTO struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

func (d UpdateDTO) Empty() bool {
	return d.Firstname == "" && d.Lastname == "" && d.Email == ""
}

type AddRolesDTO struct {
	Roles []int64 `json:"roles"`
}
