package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	onboardingUC "github.com/khoahotran/career-onboard/internal/application/usecase/onboarding"
	"github.com/khoahotran/career-onboard/internal/domain/profile"
	"github.com/khoahotran/career-onboard/pkg/apperror"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

type OnboardingHandler struct {
	updateProfileUseCase *onboardingUC.UpdateProfileUseCase
	statusUseCase        *onboardingUC.GetOnboardingStatusUseCase
	logger               logger.Logger
}

func NewOnboardingHandler(
	updateUC *onboardingUC.UpdateProfileUseCase,
	statusUC *onboardingUC.GetOnboardingStatusUseCase,
	log logger.Logger,
) *OnboardingHandler {
	return &OnboardingHandler{
		updateProfileUseCase: updateUC,
		statusUseCase:        statusUC,
		logger:               log,
	}
}

func (h *OnboardingHandler) UpdateProfile(c *gin.Context) {
	identity, ok := GetIdentityFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("identity not found in context", nil))
		return
	}

	var req profile.RawUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid JSON body for profile update", err, zap.String("external_id", identity.ExternalID))
		c.Error(apperror.ErrProfileUpdateFailed)
		return
	}

	output, err := h.updateProfileUseCase.Execute(c.Request.Context(), onboardingUC.UpdateProfileInput{
		Identity: identity,
		Raw:      req,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, UpdateProfileResponse{
		UserDTO: ToUserDTO(output.User),
		Success: output.Success,
	})
}

func (h *OnboardingHandler) GetOnboardingStatus(c *gin.Context) {
	identity, ok := GetIdentityFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("identity not found in context", nil))
		return
	}

	status, err := h.statusUseCase.Execute(c.Request.Context(), identity)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, status)
}
