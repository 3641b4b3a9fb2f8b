package handlers

import (
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"github.com/Marcos1701/finquest-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Firebase        *auth.Client

	UserSvc        userService
	TransactionSvc transactionService
	IndicatorSvc   indicatorService
	MissionSvc     missionService
	AssignmentSvc  assignmentService
	GeneratorSvc   generatorService

	MaxActiveMissions int
}
