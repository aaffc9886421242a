package role

type CreateDTO struct {
	Name        string  `json:"name"`
	Permissions []int64 `json:"permissions"`
}

type UpdateDTO struct {
	Name string `json:"name"`
}

type PermissionsDTO struct {
	Permissions []int64 `json:"permissions"`
}
