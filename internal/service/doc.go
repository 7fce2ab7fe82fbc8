// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects, the task store
// (defined in internal/store), the access policy and the result cache.
//
// Key components:
//
// 1. Use Case Implementations:
//   - Take one request-time snapshot of the clock per operation
//   - Enforce ownership through the injected policy before touching data
//   - Invalidate cached list results after every successful mutation
//
// 2. Dependency Management:
//   - Services receive dependencies through constructor injection
//   - Core dependencies include the store, the cache index and the policy
//
// 3. Error Handling:
//   - Validation errors from the domain pass through unchanged
//   - Expected conditions are reported with sentinel errors
//   - Unexpected failures are wrapped in TaskServiceError
//
// The service layer depends on domain entities and repository interfaces (from store),
// but never on specific infrastructure implementations.
package service
