package users

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreRepo struct {
	Client *firestore.Client
}

func NewFirestoreRepo(client *firestore.Client) *FirestoreRepo {
	return &FirestoreRepo{Client: client}
}

func (r *FirestoreRepo) Create(ctx context.Context, user User) error {
	_, err := r.Client.Collection(Collection).Doc(user.UID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrExists
		}
		return fmt.Errorf("firestore create user: %w", err)
	}
	return nil
}

func (r *FirestoreRepo) Get(ctx context.Context, uid string) (User, error) {
	snap, err := r.Client.Collection(Collection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("firestore get user: %w", err)
	}
	var user User
	if err := snap.DataTo(&user); err != nil {
		return User{}, fmt.Errorf("decode user %s: %w", uid, err)
	}
	if user.UID == "" {
		user.UID = snap.Ref.ID
	}
	return user, nil
}

var _ Repo = (*FirestoreRepo)(nil)
