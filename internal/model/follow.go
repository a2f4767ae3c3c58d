package model

// FollowListResponse is one page of a follower or following list plus the
// total edge count in that direction.
type FollowListResponse struct {
	Users []UserSummary `json:"users"`
	Count int64         `json:"count"`
}
