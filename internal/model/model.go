package model

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"username"`
	PasswordHash string `json:"-"`
	Email        string `json:"email"`
}

type Section struct {
	ID     int64  `json:"id_section"`
	Title  string `json:"title_section"`
	UserID int64  `json:"id_user"`
}

type Task struct {
	ID          int64   `json:"id_task"`
	Title       string  `json:"title_task"`
	Description *string `json:"description_task"`
	SectionID   int64   `json:"id_section"`
}

// Identity is the authenticated user as asserted by a verified token.
type Identity struct {
	UserID   int64
	Username string
	Email    string
}

func (u User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Name, Email: u.Email}
}
