package middleware

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/prompt-gateway/internal/llm"
	"github.com/nulzo/prompt-gateway/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error attached by a handler as an RFC 9457
// problem. Gateway errors are translated here and nowhere else.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		problem := toProblem(c.Errors.Last().Err)
		problem.Instance = c.Request.URL.Path

		if problem.Log != nil && problem.Status >= http.StatusInternalServerError {
			logger.Error("Request failed",
				zap.Int("status", problem.Status),
				zap.String("request_id", c.GetString(ContextKeyRequestID)),
				zap.Error(problem.Log),
			)
		}

		if retry, ok := problem.Extensions["retry_after"].(int); ok {
			c.Header("Retry-After", strconv.Itoa(retry))
		}

		// RFC 9457 dictates the json is at the root
		c.AbortWithStatusJSON(problem.Status, problem)
	}
}

func toProblem(err error) *api.Problem {
	var (
		problem    *api.Problem
		rateErr    *llm.RateLimitError
		unknownErr *llm.UnknownProviderError
		apiErr     *llm.APIError
		timeoutErr *llm.PollTimeoutError
	)

	switch {
	case errors.As(err, &problem):
		return problem

	case errors.As(err, &rateErr):
		return api.RateLimitError(rateErr.Error(),
			api.WithExtension("provider", rateErr.Provider.PublicID()),
			api.WithExtension("retry_after", int(math.Ceil(rateErr.RetryAfter.Seconds()))),
		)

	case errors.As(err, &unknownErr):
		return api.BadRequestError(unknownErr.Error(),
			api.WithExtension("supported", llm.PublicIDs()),
		)

	case errors.As(err, &apiErr):
		opts := []api.ProblemOption{api.WithExtension("provider", apiErr.Provider.PublicID())}
		if apiErr.StatusCode != 0 {
			opts = append(opts, api.WithExtension("upstream_status", apiErr.StatusCode))
		}
		return api.ProviderError(apiErr.Error(), err, opts...)

	case errors.As(err, &timeoutErr):
		return api.GatewayTimeoutError(timeoutErr.Error(), err)

	case errors.Is(err, context.DeadlineExceeded):
		return api.GatewayTimeoutError("The provider did not answer in time", err)

	case errors.Is(err, llm.ErrEmptyCompletion):
		return api.ProviderError("The provider returned no completion", err)
	}

	return api.InternalError("An unexpected error occurred.", err)
}
