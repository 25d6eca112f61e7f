package queries

import (
	"context"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/modules/auth/dto"
)

// UserQueries regroupe les requêtes SQL utilisées par l'authentification
var UserQueries = struct {
	GetByIdentifiant        string
	GetByID                 string
	UpdateDerniereConnexion string
	UpdatePassword          string
}{
	/**
	 * Paramètres: $1 = cabinet_id, $2 = identifiant (insensible à la casse)
	 */
	GetByIdentifiant: `
		SELECT id, cabinet_id, identifiant, nom, prenoms, role, password_hash, actif, derniere_connexion
		FROM utilisateurs
		WHERE cabinet_id = $1 AND lower(identifiant) = lower($2)
	`,

	GetByID: `
		SELECT id, cabinet_id, identifiant, nom, prenoms, role, password_hash, actif, derniere_connexion
		FROM utilisateurs
		WHERE cabinet_id = $1 AND id = $2
	`,

	UpdateDerniereConnexion: `
		UPDATE utilisateurs SET derniere_connexion = now() WHERE id = $1
	`,

	UpdatePassword: `
		UPDATE utilisateurs SET password_hash = $3, updated_at = now()
		WHERE cabinet_id = $1 AND id = $2
	`,
}

type UserRepository struct {
	db *postgres.Client
}

// NewUserRepository crée une nouvelle instance du repository utilisateurs
func NewUserRepository(db *postgres.Client) *UserRepository {
	return &UserRepository{db: db}
}

// FindByIdentifiant retourne nil, nil si l'utilisateur n'existe pas
func (r *UserRepository) FindByIdentifiant(ctx context.Context, cabinetID, identifiant string) (*dto.UserRecord, error) {
	return scanUser(r.db.QueryRow(ctx, UserQueries.GetByIdentifiant, cabinetID, identifiant))
}

func (r *UserRepository) FindByID(ctx context.Context, cabinetID, userID string) (*dto.UserRecord, error) {
	return scanUser(r.db.QueryRow(ctx, UserQueries.GetByID, cabinetID, userID))
}

func (r *UserRepository) TouchDerniereConnexion(ctx context.Context, userID string) error {
	return r.db.Exec(ctx, UserQueries.UpdateDerniereConnexion, userID)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, cabinetID, userID, hash string) error {
	return r.db.Exec(ctx, UserQueries.UpdatePassword, cabinetID, userID, hash)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*dto.UserRecord, error) {
	var u dto.UserRecord
	err := row.Scan(&u.ID, &u.CabinetID, &u.Identifiant, &u.Nom, &u.Prenoms, &u.Role,
		&u.PasswordHash, &u.Actif, &u.DerniereConnexion)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
