// Package git provides git repository integration for shared pattern
// catalogs.
//
// This package lets a team publish its pattern library as a git
// repository: Callisto clones the repository, polls for new commits,
// and reloads catalogs when catalog files change. It supports HTTPS
// and SSH authentication and rolls the checkout back when a pulled
// commit fails validation.
//
// # Basic Usage
//
//	cfg := &config.GitConfig{
//		URL:    "https://github.com/company/patterns.git",
//		Branch: "main",
//		Dir:    "data/catalog-git",
//	}
//
//	source, err := git.NewSource(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := source.Clone(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// # Change Detection
//
// The poller monitors the repository for changes and triggers reloads:
//
//	poller := git.NewPoller(source, 5*time.Minute, reloadCallback)
//	poller.Start(ctx)
//
// # Authentication
//
// Supports multiple authentication methods:
//   - Token-based (HTTPS): GitHub, GitLab, Bitbucket tokens
//   - SSH key-based: Public key authentication
//   - None: Public repositories
//
// The method is inferred from configuration: a token selects token
// auth, an SSH key path selects SSH auth, and neither selects no
// authentication.
package git
