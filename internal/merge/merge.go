// Package merge joins posts with their authors.
package merge

import "ursa/internal/domain"

// Suffixes for columns present on both sides of the join, other than id.
const (
	postSuffix = "_x"
	userSuffix = "_y"
)

// Merge inner-joins posts and users on post.userId == user.id.
//
// Output follows post order. Each record holds the post fields, with the
// post's id renamed to postId, followed by the user fields minus the user's
// id. Posts without a matching user, or without an integral userId, are
// dropped. When several users share an id the first one wins.
func Merge(posts, users []domain.Record) []domain.Record {
	byID := indexUsers(users)
	merged := make([]domain.Record, 0, len(posts))

	for _, post := range posts {
		userID, ok := post.Int(domain.UserIDKey)
		if !ok {
			continue
		}

		user, ok := byID[userID]
		if !ok {
			continue
		}

		merged = append(merged, mergePair(post, user))
	}

	return merged
}

func indexUsers(users []domain.Record) map[int64]domain.Record {
	byID := make(map[int64]domain.Record, len(users))

	for _, user := range users {
		id, ok := user.Int(domain.IDKey)
		if !ok {
			continue
		}

		if _, seen := byID[id]; seen {
			continue
		}

		byID[id] = user
	}

	return byID
}

func mergePair(post, user domain.Record) domain.Record {
	out := make(domain.Record, 0, len(post)+len(user))

	for _, f := range post {
		switch {
		case f.Key == domain.IDKey:
			f.Key = domain.PostIDKey
		case user.Has(f.Key):
			f.Key += postSuffix
		}
		out = append(out, f)
	}

	for _, f := range user {
		switch {
		case f.Key == domain.IDKey:
			continue
		case post.Has(f.Key):
			f.Key += userSuffix
		}
		out = append(out, f)
	}

	return out
}
