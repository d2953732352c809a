package models

// Question is a student's post. The ID is assigned by the store on
// creation and is immutable afterwards; Date is set server-side in
// milliseconds since epoch and is never accepted from a client.
type Question struct {
	ID       string `bson:"_id,omitempty" json:"id,omitempty"`
	AuthorID string `bson:"authorID" json:"authorID"`
	Date     int64  `bson:"date" json:"date"`
	Title    string `bson:"title" json:"title"`
	Content  string `bson:"content" json:"content"`
}

// QuestionResponse is a mentor's answer. QuestionID must name an
// existing Question at write time; it is never revalidated, so a
// response may outlive its question.
type QuestionResponse struct {
	ID         string `bson:"_id,omitempty" json:"id,omitempty"`
	QuestionID string `bson:"questionID" json:"questionID"`
	AuthorID   string `bson:"authorID" json:"authorID"`
	Date       int64  `bson:"date" json:"date"`
	Message    string `bson:"message" json:"message"`
}
