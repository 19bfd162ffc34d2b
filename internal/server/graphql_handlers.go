package server

import (
	"errors"

	"snapfeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

// GraphQL handles POST /graphql. The executor runs with the request
// context so resolvers see the gate's identity; errors are reformatted
// through the shared taxonomy before they reach the client.
func (s *Server) GraphQL(c *fiber.Ctx) error {
	var req struct {
		Query         string                 `json:"query"`
		Variables     map[string]interface{} `json:"variables"`
		OperationName string                 `json:"operationName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Query == "" {
		return models.RespondWithError(c, models.NewValidationError("Query is required"))
	}

	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.UserContext(),
	})

	if len(result.Errors) == 0 {
		return c.JSON(result)
	}

	formatted := make([]map[string]interface{}, 0, len(result.Errors))
	for _, gqlErr := range result.Errors {
		formatted = append(formatted, formatGraphQLError(gqlErr))
	}
	return c.JSON(fiber.Map{
		"data":   result.Data,
		"errors": formatted,
	})
}

// formatGraphQLError maps a resolver failure onto the error taxonomy.
// Unclassified errors and executor-level errors (parse, validation)
// surface with their message only; internal detail stays server-side.
func formatGraphQLError(ferr gqlerrors.FormattedError) map[string]interface{} {
	var appErr *models.AppError
	if orig := unwrapGraphQLError(ferr); orig != nil && errors.As(orig, &appErr) {
		return map[string]interface{}{
			"message":    appErr.Message,
			"extensions": appErr.Extensions(),
		}
	}
	return map[string]interface{}{"message": ferr.Message}
}

// unwrapGraphQLError digs the resolver's error out of the executor's
// wrapping layers.
func unwrapGraphQLError(ferr gqlerrors.FormattedError) error {
	err := ferr.OriginalError()
	for err != nil {
		var gqlWrapped *gqlerrors.Error
		if errors.As(err, &gqlWrapped) && gqlWrapped.OriginalError != nil {
			err = gqlWrapped.OriginalError
			continue
		}
		return err
	}
	return nil
}
