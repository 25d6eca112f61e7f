package queries

// CabinetQueries requêtes SQL du middleware cabinet
var CabinetQueries = struct {
	GetByCode string
}{
	/**
	 * Récupère les informations d'un cabinet par son code
	 * Paramètres: $1 = code
	 */
	GetByCode: `
		SELECT
			id,
			code,
			nom,
			email_admin,
			statut
		FROM cabinets
		WHERE code = $1
	`,
}
