package handlers

import (
	"errors"

	"github.com/openbooks/ledger-backend/internal/apperrors"
	"github.com/openbooks/ledger-backend/internal/dto"
	"github.com/openbooks/ledger-backend/internal/utils"
)

// toValidationResponse converts domain validation failures into the structured
// error payload. The bool reports whether err was a validation failure at all.
func toValidationResponse(err error) (dto.ValidationErrorResponse, bool) {
	var verrs apperrors.ValidationErrors
	if errors.As(err, &verrs) {
		problems := make([]dto.ValidationProblem, len(verrs))
		for i, e := range verrs {
			problems[i] = dto.ValidationProblem{Code: e.Code, Message: e.Message, Details: e.Details}
		}
		return dto.ValidationErrorResponse{Error: "validation failed", Problems: problems}, true
	}

	var verr *apperrors.AccountingValidationError
	if errors.As(err, &verr) {
		return dto.ValidationErrorResponse{
			Error:    "validation failed",
			Problems: []dto.ValidationProblem{{Code: verr.Code, Message: verr.Message, Details: verr.Details}},
		}, true
	}

	var derr *apperrors.DoubleEntryError
	if errors.As(err, &derr) {
		return dto.ValidationErrorResponse{
			Error: "validation failed",
			Problems: []dto.ValidationProblem{{
				Code:    apperrors.CodeTransactionInvalid,
				Message: derr.Error(),
				Details: map[string]any{
					"debitTotal":  utils.FormatWithPrecision(derr.DebitTotal, 2),
					"creditTotal": utils.FormatWithPrecision(derr.CreditTotal, 2),
					"difference":  utils.FormatWithPrecision(derr.Difference, 2),
				},
			}},
		}, true
	}

	return dto.ValidationErrorResponse{}, false
}
