package queries

import (
	"context"
	"strings"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	activationDto "cabinet-suite-core/internal/modules/activation/dto"
	activationQueries "cabinet-suite-core/internal/modules/activation/queries"
	"cabinet-suite-core/internal/modules/administrateur/dto"
)

// CabinetQueries requêtes SQL des cabinets
var CabinetQueries = struct {
	Insert      string
	InsertAdmin string
	EmailExists string
	Get         string
	Update      string
}{
	Insert: `
		INSERT INTO cabinets (code, nom, email_admin, telephone, adresse, specialite)
		VALUES ($1, $2, lower($3), $4, $5, $6)
		RETURNING id, statut, created_at
	`,

	InsertAdmin: `
		INSERT INTO utilisateurs (cabinet_id, identifiant, nom, prenoms, role, password_hash)
		VALUES ($1, $2, $3, $4, 'admin', $5)
	`,

	EmailExists: `
		SELECT EXISTS (SELECT 1 FROM cabinets WHERE email_admin = lower($1))
	`,

	Get: `
		SELECT id, code, nom, email_admin, telephone, adresse, specialite, statut, created_at
		FROM cabinets
		WHERE id = $1
	`,

	Update: `
		UPDATE cabinets
		SET nom = $2, telephone = $3, adresse = $4, specialite = $5, updated_at = now()
		WHERE id = $1
		RETURNING id, code, nom, email_admin, telephone, adresse, specialite, statut, created_at
	`,
}

// ErrCodeTaken le code cabinet généré existe déjà
type ErrCodeTaken struct{}

func (ErrCodeTaken) Error() string { return "code cabinet déjà utilisé" }

// ErrEmailTaken un cabinet existe déjà pour cet email
type ErrEmailTaken struct{}

func (ErrEmailTaken) Error() string { return "email administrateur déjà utilisé" }

type CabinetRepository struct {
	db *postgres.Client
	tx *postgres.TransactionManager
}

func NewCabinetRepository(db *postgres.Client, tx *postgres.TransactionManager) *CabinetRepository {
	return &CabinetRepository{db: db, tx: tx}
}

// Register crée cabinet, compte admin et licence d'essai dans une seule transaction
func (r *CabinetRepository) Register(
	ctx context.Context,
	cabinet *dto.CabinetRecord,
	admin *dto.NouvelUtilisateur,
	licence func(cabinetID string) (*activationDto.Licence, error),
) (*activationDto.Licence, error) {
	var issued *activationDto.Licence

	err := r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		err := tx.QueryRow(ctx, CabinetQueries.Insert,
			cabinet.Code, cabinet.Nom, cabinet.EmailAdmin, cabinet.Telephone, cabinet.Adresse, cabinet.Specialite,
		).Scan(&cabinet.ID, &cabinet.Statut, &cabinet.CreatedAt)
		if err != nil {
			constraint := postgres.ViolatedConstraint(err)
			switch {
			case strings.Contains(constraint, "email"):
				return ErrEmailTaken{}
			case strings.Contains(constraint, "code"):
				return ErrCodeTaken{}
			}
			return err
		}

		if err := tx.Exec(ctx, CabinetQueries.InsertAdmin,
			cabinet.ID, admin.Identifiant, admin.Nom, admin.Prenoms, admin.PasswordHash,
		); err != nil {
			return err
		}

		issued, err = licence(cabinet.ID)
		if err != nil {
			return err
		}
		return activationQueries.SaveLicence(ctx, tx, issued)
	})
	return issued, err
}

func (r *CabinetRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, CabinetQueries.EmailExists, email).Scan(&exists)
	return exists, err
}

// Get retourne nil, nil pour un cabinet inconnu
func (r *CabinetRepository) Get(ctx context.Context, cabinetID string) (*dto.CabinetRecord, error) {
	return scanCabinet(r.db.QueryRow(ctx, CabinetQueries.Get, cabinetID))
}

func (r *CabinetRepository) Update(ctx context.Context, cabinetID string, req dto.UpdateCabinetRequest) (*dto.CabinetRecord, error) {
	return scanCabinet(r.db.QueryRow(ctx, CabinetQueries.Update, cabinetID, req.Nom, req.Telephone, req.Adresse, req.Specialite))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCabinet(row rowScanner) (*dto.CabinetRecord, error) {
	var c dto.CabinetRecord
	err := row.Scan(&c.ID, &c.Code, &c.Nom, &c.EmailAdmin, &c.Telephone, &c.Adresse, &c.Specialite, &c.Statut, &c.CreatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
