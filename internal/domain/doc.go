// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, tasks, listing filters, attachments,
// and the tagged error kinds that use cases return. It is independent of any
// storage or transport concern.
package domain
