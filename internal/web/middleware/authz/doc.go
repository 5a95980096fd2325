// Package authz provides fiber middleware enforcing engine decisions.
//
// The middleware expects an upstream authentication layer to store the principal in
// fiber.Locals under LocalTenantID and LocalUserID. Requests without a principal get
// 401, denied requests 403. Engine errors are mapped by kind:
//   - not found: 404
//   - conflict: 409
//   - bad request: 400
//   - forbidden: 403
//   - anything else, store failures included: 500
//
// Usage:
//
//	api.Get("/pos/refund", authzmw.RequirePermission(engine, "pos:refund"), refundHandler)
//	api.Use(authzmw.RequireRouteAccess(engine))
package authz
