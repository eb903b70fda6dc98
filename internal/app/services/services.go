// Package services holds the business logic behind the HTTP controllers.
// Services depend on repository interfaces and an eventtime.Clock, and take
// the acting user id as an explicit argument.
//
// Services defined in this package:
//   - UserService: profiles and interests
//   - CatalogService: tags and universities
//   - VerificationService: student verification codes
//   - EventService: events, attendance and event images
//   - OrganizationService: organizations and their admins
//   - FeedService: event and host recommendations
//   - SearchService: free-text search
//   - CallService: live calls of online events
package services
