package queries

import (
	"context"
	"fmt"
	"time"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/modules/activation/dto"
)

// LicenceQueries requêtes SQL des licences
var LicenceQueries = struct {
	Get           string
	GetForUpdate  string
	Upsert        string
	ExpireOverdue string
}{
	Get: `
		SELECT cabinet_id, plan, statut, date_activation, date_expiration, jeton, cle
		FROM licences
		WHERE cabinet_id = $1
	`,

	GetForUpdate: `
		SELECT cabinet_id, plan, statut, date_activation, date_expiration, jeton, cle
		FROM licences
		WHERE cabinet_id = $1
		FOR UPDATE
	`,

	/**
	 * Une licence par cabinet: l'activation remplace la précédente
	 */
	Upsert: `
		INSERT INTO licences (cabinet_id, plan, statut, date_activation, date_expiration, jeton, cle, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (cabinet_id) DO UPDATE SET
			plan            = EXCLUDED.plan,
			statut          = EXCLUDED.statut,
			date_activation = EXCLUDED.date_activation,
			date_expiration = EXCLUDED.date_expiration,
			jeton           = EXCLUDED.jeton,
			cle             = EXCLUDED.cle,
			updated_at      = now()
	`,

	ExpireOverdue: `
		UPDATE licences l
		SET statut = 'expiree', updated_at = now()
		FROM cabinets c
		WHERE c.id = l.cabinet_id
		  AND l.statut = 'active'
		  AND l.date_expiration IS NOT NULL
		  AND l.date_expiration <= $1
		RETURNING c.code
	`,
}

type LicenceRepository struct {
	db *postgres.Client
	tx *postgres.TransactionManager
}

// NewLicenceRepository crée une nouvelle instance du repository licences
func NewLicenceRepository(db *postgres.Client, tx *postgres.TransactionManager) *LicenceRepository {
	return &LicenceRepository{db: db, tx: tx}
}

// Get retourne nil, nil quand le cabinet n'a pas de licence
func (r *LicenceRepository) Get(ctx context.Context, cabinetID string) (*dto.Licence, error) {
	return scanLicence(r.db.QueryRow(ctx, LicenceQueries.Get, cabinetID))
}

func (r *LicenceRepository) Save(ctx context.Context, l *dto.Licence) error {
	return SaveLicence(ctx, r.db, l)
}

// ActivateWithKey verrouille licence et clé, applique apply puis consomme la clé
func (r *LicenceRepository) ActivateWithKey(
	ctx context.Context,
	cabinetID, cle string,
	at time.Time,
	apply func(current *dto.Licence, key *dto.CleActivation) (*dto.Licence, error),
) (*dto.Licence, error) {
	var result *dto.Licence

	err := r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		current, err := scanLicence(tx.QueryRow(ctx, LicenceQueries.GetForUpdate, cabinetID))
		if err != nil {
			return fmt.Errorf("lecture licence: %w", err)
		}
		key, err := scanCle(tx.QueryRow(ctx, CleQueries.GetForUpdate, cle))
		if err != nil {
			return fmt.Errorf("lecture clé: %w", err)
		}

		next, err := apply(current, key)
		if err != nil {
			return err
		}

		if err := SaveLicence(ctx, tx, next); err != nil {
			return fmt.Errorf("enregistrement licence: %w", err)
		}
		if err := tx.Exec(ctx, CleQueries.MarkUsed, cle, cabinetID, at); err != nil {
			return fmt.Errorf("consommation clé: %w", err)
		}

		result = next
		return nil
	})
	return result, err
}

// ExpireOverdue passe en expirée les licences échues et retourne les codes cabinet concernés
func (r *LicenceRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, LicenceQueries.ExpireOverdue, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// SaveLicence upsert utilisable dans une transaction existante
func SaveLicence(ctx context.Context, q postgres.Querier, l *dto.Licence) error {
	return q.Exec(ctx, LicenceQueries.Upsert,
		l.CabinetID, l.Plan, l.Statut, l.DateActivation, l.DateExpiration, l.Jeton, l.Cle)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLicence(row rowScanner) (*dto.Licence, error) {
	var l dto.Licence
	err := row.Scan(&l.CabinetID, &l.Plan, &l.Statut, &l.DateActivation, &l.DateExpiration, &l.Jeton, &l.Cle)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}
