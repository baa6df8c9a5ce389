package user

import (
	"github.com/himanshhhhuv/studentinfo/core"
)

type serviceMock struct {
	service
}

// NewServiceMock wires a service around test doubles with a test config.
func NewServiceMock(
	repo Repository,
	owned OwnedDataRepository,
	regStore RegistrationStore,
	throttle ResetThrottle,
	mailSvc core.EmailService,
) ServiceInterface {
	return &serviceMock{
		service: service{
			conf:     core.NewTestConfig(),
			repo:     repo,
			owned:    owned,
			regStore: regStore,
			throttle: throttle,
			mailSvc:  mailSvc,
		},
	}
}
