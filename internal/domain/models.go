package domain

import "time"

// Quiz is a named collection of ordered questions.
type Quiz struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category,omitempty"`
	Description  string    `json:"description,omitempty"`
	IsPublished  bool      `json:"isPublished,omitempty"`
	ShowFeedback bool      `json:"showFeedback,omitempty"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Question is one multiple-choice item. Options keep their stored order;
// CorrectAnswer equals one of the options. Order sequences questions within
// a quiz, ascending.
type Question struct {
	ID            string   `json:"id"`
	QuizID        string   `json:"quizId"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Order         int      `json:"order"`
}

// LeaderboardEntry is one persisted (quiz, user, score) record. Entries are
// append-only; multiple entries per user/quiz pair are expected.
type LeaderboardEntry struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quizId"`
	QuizTitle      string    `json:"quizTitle"`
	UserID         string    `json:"userId"`
	DisplayName    string    `json:"displayName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Timestamp      time.Time `json:"timestamp"`
}

// ScoreSubmission is the raw scoring signal from clients, before the
// leaderboard applies its defensive defaults.
type ScoreSubmission struct {
	QuizID         string `json:"quizId"`
	QuizTitle      string `json:"quizTitle"`
	UserID         string `json:"userId"`
	DisplayName    string `json:"displayName"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
}

// UserRank places one user inside a quiz's full score set using standard
// competition ranking: tied scores share a rank, the next distinct score
// skips past the tied block.
type UserRank struct {
	Rank  int `json:"rank"`
	Total int `json:"total"`
	Score int `json:"score"`
}

// User mirrors one document in the users collection.
type User struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Roles stored on user documents.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
