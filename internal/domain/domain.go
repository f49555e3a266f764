package domain

// Keys the API uses for the join between posts and users.
const (
	IDKey       = "id"
	UserIDKey   = "userId"
	PostIDKey   = "postId"
	CommentsKey = "comments"
	TitleKey    = "title"
	NameKey     = "name"
)

// Resource names exposed by the API under its base URL.
const (
	PostsResource    = "posts"
	UsersResource    = "users"
	CommentsResource = "comments"
)
