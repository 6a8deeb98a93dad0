package scaffold

func routeSource(l Language) string {
	if l == TypeScript {
		return `import type { Request, Response } from "express";

export const GET = (req: Request, res: Response) => {
  res.json({ message: "Hello from nexp" });
};
`
	}
	return `export const GET = (req, res) => {
  res.json({ message: "Hello from nexp" });
};
`
}

func healthSource(l Language) string {
	if l == TypeScript {
		return `import type { Request, Response } from "express";

export async function GET(req: Request, res: Response) {
  res.json({ status: "ok" });
}
`
	}
	return `export async function GET(req, res) {
  res.json({ status: "ok" });
}
`
}

const middlewaresSource = `import express from "express";

export const middlewares = [express.json()];
`

func tailSource(l Language) string {
	if l == TypeScript {
		return `import type { NextFunction, Request, Response } from "express";

export const middlewares = [
  (err: Error, req: Request, res: Response, next: NextFunction) => {
    res.status(500).json({ error: err.message });
  },
];
`
	}
	return `export const middlewares = [
  (err, req, res, next) => {
    res.status(500).json({ error: err.message });
  },
];
`
}

const settingsSource = `export const settings = [{ name: "x-powered-by", value: false }];
`
