// file: mappers/auth_mapper.go
package mappers

import (
	"github.com/alpnix/HackAtDavidson/dto"
	"github.com/alpnix/HackAtDavidson/services"
)

func MapResetFlow(f services.ResetFlow) dto.ResetFlowResp {
	return dto.ResetFlowResp{
		Stage: string(f.Stage),
		Email: f.Email,
		Code:  f.Code,
		Error: f.Error,
	}
}
