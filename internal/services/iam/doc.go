// Package iam owns who a request acts as and which roles a user holds.
//
// Roles are mirrored from Okta group membership. A role edit changes membership at Okta,
// re-reads the user's groups, persists the resolved roles and then updates every live
// session of the user, in that order. Edits, syncs and logins of one subject run one at a
// time within a process. If an Okta step fails nothing local changes. A crash
// after the persist leaves live sessions behind the stored roles until the next login or
// SyncRoles.
//
// IsActingAsUser is the ownership gate for user-scoped mutations: it compares the session
// subject with the Okta subject of the user named in the request.
package iam
