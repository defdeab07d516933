// Package handler provides typed HTTP handlers for JSON APIs.
//
// A HandlerFunc receives a Context and a request value already decoded by
// one or more binders, and returns a Response:
//
//	type loginRequest struct {
//		Email    string `json:"email"`
//		Password string `json:"password"`
//	}
//
//	func login(ctx handler.Context, req loginRequest) handler.Response {
//		res, err := accounts.SignIn(ctx, req.Email, req.Password)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(res)
//	}
//
//	r.Post("/login", handler.Wrap(login,
//		handler.WithBinders(binder.JSON(1<<20)),
//		handler.WithErrorHandler(errorHandler),
//	))
//
// Errors returned by binders, by Error responses and by failed renders all go
// through the configured ErrorHandler. NewErrorHandler translates them into
// the JSON error body:
//
//	{"error": {"code": "validation_error", "message": "...", "details": {...}}}
//
// Internal error text is logged but never written to the client.
package handler
