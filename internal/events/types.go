package events

// Gallery Event Types
const (
	AlbumCreated = "ALBUM_CREATED"
	AlbumUpdated = "ALBUM_UPDATED"
	AlbumDeleted = "ALBUM_DELETED"

	ImageCreated = "IMAGE_CREATED"
	ImageUpdated = "IMAGE_UPDATED"
	ImageDeleted = "IMAGE_DELETED"

	ShareCreated = "SHARE_CREATED"
	ShareRevoked = "SHARE_REVOKED"

	FriendRequested = "FRIEND_REQUESTED"
	FriendAccepted  = "FRIEND_ACCEPTED"
	FriendRemoved   = "FRIEND_REMOVED"
)

// Kafka Topics
const (
	GalleryActivityTopic = "gallery.activity"
	ShareChangesTopic    = "share.changes"
)

// Resource Types
const (
	ResourceAlbum = "album"
	ResourceImage = "image"
)
