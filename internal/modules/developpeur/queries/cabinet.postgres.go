package queries

import (
	"context"
	"time"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	activationDto "cabinet-suite-core/internal/modules/activation/dto"
	"cabinet-suite-core/internal/modules/developpeur/dto"
)

// DeveloppeurQueries requêtes SQL des outils développeur
var DeveloppeurQueries = struct {
	CabinetsWithLicence string
}{
	CabinetsWithLicence: `
		SELECT c.id, c.code, c.nom, c.email_admin, c.statut, c.created_at,
		       l.plan, l.statut, l.date_activation, l.date_expiration, l.jeton, l.cle
		FROM cabinets c
		LEFT JOIN licences l ON l.cabinet_id = c.id
		ORDER BY c.created_at DESC
	`,
}

type DeveloppeurRepository struct {
	db *postgres.Client
}

func NewDeveloppeurRepository(db *postgres.Client) *DeveloppeurRepository {
	return &DeveloppeurRepository{db: db}
}

// CabinetsWithLicence tous les cabinets; Licence vaut nil sans ligne licences
func (r *DeveloppeurRepository) CabinetsWithLicence(ctx context.Context) ([]dto.CabinetLicenceRow, error) {
	rows, err := r.db.Query(ctx, DeveloppeurQueries.CabinetsWithLicence)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []dto.CabinetLicenceRow{}
	for rows.Next() {
		var (
			row          dto.CabinetLicenceRow
			plan, statut *string
			jeton        *string
			activation   *time.Time
			expiration   *time.Time
			cle          *string
		)
		if err := rows.Scan(&row.ID, &row.Code, &row.Nom, &row.EmailAdmin, &row.Statut, &row.CreatedAt,
			&plan, &statut, &activation, &expiration, &jeton, &cle); err != nil {
			return nil, err
		}
		if plan != nil {
			row.Licence = &activationDto.Licence{
				CabinetID:      row.ID,
				Plan:           *plan,
				Statut:         *statut,
				DateActivation: *activation,
				DateExpiration: expiration,
				Jeton:          *jeton,
				Cle:            cle,
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
