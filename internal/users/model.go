package users

// Collection is the Firestore collection profiles live in. Documents are keyed by uid.
const Collection = "users"

type User struct {
	UID       string `firestore:"uid" json:"uid"`
	Username  string `firestore:"username" json:"username"`
	Email     string `firestore:"email" json:"email"`
	CreatedAt string `firestore:"createdAt" json:"createdAt"`
}
