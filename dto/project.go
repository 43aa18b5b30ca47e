// file: dto/project.go
package dto

import "time"

type SubmitProjectReq struct {
	Name      string   `json:"name"`
	MemberIDs []uint32 `json:"member_ids" validate:"max=16"`

	MemberIDsCamel []uint32 `json:"memberIds" validate:"-"`
}

func (r *SubmitProjectReq) Normalize() {
	if len(r.MemberIDs) == 0 {
		r.MemberIDs = r.MemberIDsCamel
	}
}

type ProjectMemberResp struct {
	RegistrationID uint32 `json:"registration_id"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Email          string `json:"email,omitempty"`
}

type ProjectResp struct {
	ID        uint32              `json:"id"`
	Name      string              `json:"name"`
	Members   []ProjectMemberResp `json:"members"`
	CreatedAt time.Time           `json:"created_at"`
}
