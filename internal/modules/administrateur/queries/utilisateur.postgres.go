package queries

import (
	"context"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/modules/administrateur/dto"
)

// UtilisateurQueries requêtes SQL de gestion des comptes
var UtilisateurQueries = struct {
	List           string
	Get            string
	Insert         string
	Update         string
	UpdatePassword string
}{
	List: `
		SELECT id, identifiant, nom, prenoms, role, actif, derniere_connexion, created_at
		FROM utilisateurs
		WHERE cabinet_id = $1
		ORDER BY role, nom, prenoms
	`,

	Get: `
		SELECT id, identifiant, nom, prenoms, role, actif, derniere_connexion, created_at
		FROM utilisateurs
		WHERE cabinet_id = $1 AND id = $2
	`,

	Insert: `
		INSERT INTO utilisateurs (cabinet_id, identifiant, nom, prenoms, role, password_hash)
		VALUES ($1, lower($2), $3, $4, $5, $6)
		RETURNING id, identifiant, nom, prenoms, role, actif, derniere_connexion, created_at
	`,

	Update: `
		UPDATE utilisateurs
		SET nom = $3, prenoms = $4, role = $5, actif = $6, updated_at = now()
		WHERE cabinet_id = $1 AND id = $2
		RETURNING id, identifiant, nom, prenoms, role, actif, derniere_connexion, created_at
	`,

	UpdatePassword: `
		UPDATE utilisateurs SET password_hash = $3, updated_at = now()
		WHERE cabinet_id = $1 AND id = $2
	`,
}

type UtilisateurRepository struct {
	db *postgres.Client
}

func NewUtilisateurRepository(db *postgres.Client) *UtilisateurRepository {
	return &UtilisateurRepository{db: db}
}

func (r *UtilisateurRepository) List(ctx context.Context, cabinetID string) ([]dto.Utilisateur, error) {
	rows, err := r.db.Query(ctx, UtilisateurQueries.List, cabinetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []dto.Utilisateur{}
	for rows.Next() {
		u, err := scanUtilisateur(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UtilisateurRepository) Get(ctx context.Context, cabinetID, id string) (*dto.Utilisateur, error) {
	return scanUtilisateur(r.db.QueryRow(ctx, UtilisateurQueries.Get, cabinetID, id))
}

// Create remonte la violation d'unicité (cabinet_id, identifiant) telle quelle
func (r *UtilisateurRepository) Create(ctx context.Context, cabinetID string, u *dto.NouvelUtilisateur) (*dto.Utilisateur, error) {
	row := r.db.QueryRow(ctx, UtilisateurQueries.Insert, cabinetID, u.Identifiant, u.Nom, u.Prenoms, u.Role, u.PasswordHash)
	return scanUtilisateur(row)
}

func (r *UtilisateurRepository) Update(ctx context.Context, cabinetID, id string, req dto.UpdateUtilisateurRequest) (*dto.Utilisateur, error) {
	row := r.db.QueryRow(ctx, UtilisateurQueries.Update, cabinetID, id, req.Nom, req.Prenoms, req.Role, *req.Actif)
	return scanUtilisateur(row)
}

// UpdatePassword retourne false pour un utilisateur inconnu
func (r *UtilisateurRepository) UpdatePassword(ctx context.Context, cabinetID, id, hash string) (bool, error) {
	n, err := r.db.ExecRows(ctx, UtilisateurQueries.UpdatePassword, cabinetID, id, hash)
	return n == 1, err
}

func scanUtilisateur(row rowScanner) (*dto.Utilisateur, error) {
	var u dto.Utilisateur
	err := row.Scan(&u.ID, &u.Identifiant, &u.Nom, &u.Prenoms, &u.Role, &u.Actif, &u.DerniereConnexion, &u.CreatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
