package migration

import (
	activationdomain "github.com/smallbiznis/keygate/internal/activation/domain"
	customerdomain "github.com/smallbiznis/keygate/internal/customer/domain"
	licensedomain "github.com/smallbiznis/keygate/internal/license/domain"
	releasedomain "github.com/smallbiznis/keygate/internal/release/domain"
	teamdomain "github.com/smallbiznis/keygate/internal/team/domain"
	webhookdomain "github.com/smallbiznis/keygate/internal/webhookevent/domain"
)

func tables() []any {
	return []any{
		&customerdomain.Customer{},
		&teamdomain.Team{},
		&teamdomain.TeamMember{},
		&licensedomain.License{},
		&activationdomain.Activation{},
		&releasedomain.Release{},
		&webhookdomain.WebhookEvent{},
	}
}
