package queries

import (
	"context"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/modules/activation/dto"
)

// CleQueries requêtes SQL des clés d'activation
var CleQueries = struct {
	Insert       string
	GetForUpdate string
	List         string
	MarkUsed     string
	Revoke       string
}{
	Insert: `
		INSERT INTO cles_activation (cle, plan, cabinet_code, note)
		VALUES ($1, $2, $3, $4)
		RETURNING statut, created_at
	`,

	GetForUpdate: `
		SELECT cle, plan, cabinet_code, statut, note, utilisee_par, utilisee_le, created_at
		FROM cles_activation
		WHERE cle = $1
		FOR UPDATE
	`,

	/**
	 * $1 = statut ('' pour toutes)
	 */
	List: `
		SELECT cle, plan, cabinet_code, statut, note, utilisee_par, utilisee_le, created_at
		FROM cles_activation
		WHERE ($1 = '' OR statut = $1)
		ORDER BY created_at DESC
		LIMIT 500
	`,

	MarkUsed: `
		UPDATE cles_activation
		SET statut = 'utilisee', utilisee_par = $2, utilisee_le = $3
		WHERE cle = $1 AND statut = 'disponible'
	`,

	Revoke: `
		UPDATE cles_activation SET statut = 'revoquee'
		WHERE cle = $1 AND statut = 'disponible'
	`,
}

type CleRepository struct {
	db *postgres.Client
}

func NewCleRepository(db *postgres.Client) *CleRepository {
	return &CleRepository{db: db}
}

// Insert enregistre une clé; une collision remonte une violation d'unicité
func (r *CleRepository) Insert(ctx context.Context, cle *dto.CleActivation) error {
	return r.db.QueryRow(ctx, CleQueries.Insert, cle.Cle, cle.Plan, cle.CabinetCode, cle.Note).
		Scan(&cle.Statut, &cle.CreatedAt)
}

func (r *CleRepository) List(ctx context.Context, statut string) ([]dto.CleActivation, error) {
	rows, err := r.db.Query(ctx, CleQueries.List, statut)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cles := []dto.CleActivation{}
	for rows.Next() {
		c, err := scanCle(rows)
		if err != nil {
			return nil, err
		}
		cles = append(cles, *c)
	}
	return cles, rows.Err()
}

// Revoke retourne false si la clé n'existe pas ou n'est plus disponible
func (r *CleRepository) Revoke(ctx context.Context, cle string) (bool, error) {
	n, err := r.db.ExecRows(ctx, CleQueries.Revoke, cle)
	return n == 1, err
}

func scanCle(row rowScanner) (*dto.CleActivation, error) {
	var c dto.CleActivation
	err := row.Scan(&c.Cle, &c.Plan, &c.CabinetCode, &c.Statut, &c.Note, &c.UtiliseePar, &c.UtiliseeLe, &c.CreatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
