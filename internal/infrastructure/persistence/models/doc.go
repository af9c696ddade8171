// Package models contains GORM persistence models that map to the
// purchases, subscriptions, prospects and blog_posts tables.
//
// Domain entities stay free of GORM tags. Each model carries FromDomain and
// ToDomain mappers used by the repositories in the parent package.
package models
